package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sirupsen/logrus"
)

// maxProviderMessage caps raw provider bodies quoted in errors, in runes
const maxProviderMessage = 200

// Gateway is the boundary to the hosted completion provider
type Gateway interface {
	Complete(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) Result
	Ping(ctx context.Context) error
}

// Observer is told about every completion call. Metrics implements it.
type Observer interface {
	RecordAIRequest(model, status string, duration time.Duration)
}

// GroqClient talks to an OpenAI-compatible chat completions endpoint (Groq by default)
type GroqClient struct {
	config     *config.LLMConfig
	httpClient *http.Client
	observer   Observer
	logger     *logrus.Logger
}

// NewGroqClient creates a new gateway. observer may be nil.
func NewGroqClient(cfg *config.LLMConfig, observer Observer, logger *logrus.Logger) *GroqClient {
	logger.WithFields(logrus.Fields{
		"baseURL": cfg.BaseURL,
		"model":   cfg.Model,
		"timeout": cfg.RequestTimeout,
	}).Info("LLM gateway initialized")

	return &GroqClient{
		config: cfg,
		httpClient: &http.Client{
			// Per-call deadlines come from the request context; this only
			// bounds a misbehaving connection.
			Timeout: 2 * cfg.RequestTimeout,
		},
		observer: observer,
		logger:   logger,
	}
}

type completionRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one completion request. It never retries; failures come
// back as a tagged Result instead of an error.
func (c *GroqClient) Complete(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) Result {
	if err := validateRequest(messages, temperature, maxTokens); err != nil {
		c.logger.WithError(err).Error("Rejected completion request")
		return apiError(err)
	}

	start := time.Now()
	result := c.complete(ctx, messages, temperature, maxTokens)
	duration := time.Since(start)

	if c.observer != nil {
		c.observer.RecordAIRequest(c.config.Model, result.Outcome.String(), duration)
	}

	fields := logrus.Fields{
		"model":    c.config.Model,
		"outcome":  result.Outcome.String(),
		"duration": duration,
		"messages": len(messages),
	}
	switch result.Outcome {
	case OutcomeOK:
		c.logger.WithFields(fields).Debug("LLM request completed")
	case OutcomeRateLimited:
		c.logger.WithFields(fields).WithError(result.Err).Warn("LLM request rate limited")
	default:
		c.logger.WithFields(fields).WithError(result.Err).Error("LLM request failed")
	}

	return result
}

func (c *GroqClient) complete(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) Result {
	jsonData, err := json.Marshal(completionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return apiError(fmt.Errorf("failed to marshal request: %w", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.url("/chat/completions"), bytes.NewReader(jsonData))
	if err != nil {
		return transportError(fmt.Errorf("failed to create request: %w", err))
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return rateLimited(fmt.Errorf("%w: %s", ErrRateLimited, providerMessage(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(&APIError{StatusCode: resp.StatusCode, Message: providerMessage(body)})
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return transportError(fmt.Errorf("failed to parse response: %w", err))
	}
	if result.Error != nil && result.Error.Message != "" {
		return apiError(&APIError{StatusCode: resp.StatusCode, Message: result.Error.Message})
	}
	if len(result.Choices) == 0 {
		return transportError(fmt.Errorf("no choices in response"))
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return transportError(fmt.Errorf("provider returned an empty completion"))
	}
	return ok(content)
}

// Ping validates the credential with a lightweight model listing call
func (c *GroqClient) Ping(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.url("/models"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: providerMessage(body)}
	}
	return nil
}

func (c *GroqClient) url(path string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + path
}

func (c *GroqClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
}

func validateRequest(messages []models.Message, temperature float64, maxTokens int) error {
	if temperature < 0 || temperature > 1 {
		return fmt.Errorf("%w: temperature %.2f outside [0,1]", ErrInvalidCall, temperature)
	}
	if maxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidCall)
	}
	for _, msg := range messages {
		if msg.Role == models.RoleSystem || msg.Role == models.RoleUser {
			return nil
		}
	}
	return fmt.Errorf("%w: no system or user message", ErrInvalidCall)
}

// providerMessage extracts error.message from a provider body, falling back
// to the raw (truncated) body.
func providerMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(msg) > maxProviderMessage {
		msg = string([]rune(msg)[:maxProviderMessage]) + "..."
	}
	return msg
}
