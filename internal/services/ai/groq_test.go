package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	statuses []string
}

func (o *recordingObserver) RecordAIRequest(model, status string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GroqClient, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	obs := &recordingObserver{}
	cfg := &config.LLMConfig{
		APIKey:         "gsk_test",
		BaseURL:        srv.URL + "/",
		Model:          "llama3-70b-8192",
		RequestTimeout: 2 * time.Second,
	}
	return NewGroqClient(cfg, obs, logger.Discard()), obs
}

var userOnly = []models.Message{{Role: models.RoleUser, Content: "hi"}}

func TestCompleteSuccess(t *testing.T) {
	var got completionRequest
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"You are not alone."}}]}`))
	})

	res := client.Complete(context.Background(), userOnly, 0.4, 150)

	require.True(t, res.OK())
	assert.Equal(t, "You are not alone.", res.Text)
	assert.Equal(t, "llama3-70b-8192", got.Model)
	assert.Equal(t, 0.4, got.Temperature)
	assert.Equal(t, 150, got.MaxTokens)
	assert.Equal(t, userOnly, got.Messages)
	assert.Equal(t, []string{"ok"}, obs.statuses)
}

func TestCompleteMapsProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, outcome: OutcomeRateLimited},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"Invalid API Key"}}`, outcome: OutcomeAPIError},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"bad model"}}`, outcome: OutcomeAPIError},
		{name: "server error", status: http.StatusBadGateway, body: `upstream down`, outcome: OutcomeAPIError},
		{name: "error object in ok body", status: http.StatusOK, body: `{"error":{"message":"oops"}}`, outcome: OutcomeAPIError},
		{name: "undecodable body", status: http.StatusOK, body: `not json`, outcome: OutcomeTransportError},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, outcome: OutcomeTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			res := client.Complete(context.Background(), userOnly, 0.4, 150)

			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Error(t, res.Err)
			assert.Empty(t, res.Text)
		})
	}
}

func TestCompleteAPIErrorCarriesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	})

	res := client.Complete(context.Background(), userOnly, 0.4, 150)

	var apiErr *APIError
	require.True(t, errors.As(res.Err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API Key", apiErr.Message)
}

func TestCompleteTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.config.RequestTimeout = 50 * time.Millisecond

	res := client.Complete(context.Background(), userOnly, 0.4, 150)

	assert.Equal(t, OutcomeTransportError, res.Outcome)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestCompleteBlankContentIsTransportError(t *testing.T) {
	catalog := resources.Load()
	localizer := i18n.MustDefault()

	for name, body := range map[string]string{
		"null":       `{"choices":[{"message":{"content":null}}]}`,
		"empty":      `{"choices":[{"message":{"role":"assistant","content":""}}]}`,
		"whitespace": `{"choices":[{"message":{"role":"assistant","content":"  \n "}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			res := client.Complete(context.Background(), userOnly, 0.4, 150)

			assert.Equal(t, OutcomeTransportError, res.Outcome)
			assert.Empty(t, res.Text)
			assert.Equal(t, []string{"transport_error"}, obs.statuses)
			assert.Contains(t, FallbackText(res, catalog, localizer), "112")
		})
	}
}

func TestProviderMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := []byte(strings.Repeat("सेवा अनुपलब्ध ", 40))

	msg := providerMessage(body)

	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Equal(t, maxProviderMessage, utf8.RuneCountInString(strings.TrimSuffix(msg, "...")))
	assert.Equal(t, "Invalid API Key", providerMessage([]byte(`{"error":{"message":"Invalid API Key"}}`)))
}

func TestCompleteRejectsInvalidInputWithoutCalling(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	cases := []struct {
		messages    []models.Message
		temperature float64
		maxTokens   int
	}{
		{userOnly, 1.5, 150},
		{userOnly, -0.1, 150},
		{userOnly, 0.4, 0},
		{nil, 0.4, 150},
		{[]models.Message{{Role: models.RoleAssistant, Content: "x"}}, 0.4, 150},
	}
	for _, c := range cases {
		res := client.Complete(context.Background(), c.messages, c.temperature, c.maxTokens)
		assert.Equal(t, OutcomeAPIError, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrInvalidCall)
	}
	assert.False(t, called)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer gsk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"object":"list","data":[]}`))
	})

	require.NoError(t, client.Ping(context.Background()))

	client.config.APIKey = "wrong"
	err := client.Ping(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestFallbackText(t *testing.T) {
	catalog := resources.Load()
	localizer := i18n.MustDefault()

	assert.Equal(t, "hello", FallbackText(Result{Outcome: OutcomeOK, Text: "hello"}, catalog, localizer))
	assert.Contains(t, FallbackText(Result{Outcome: OutcomeRateLimited}, catalog, localizer), "112")
	assert.Contains(t, FallbackText(Result{Outcome: OutcomeAPIError}, catalog, localizer), "181")
	assert.Contains(t, FallbackText(Result{Outcome: OutcomeTransportError}, catalog, localizer), "112")
}
