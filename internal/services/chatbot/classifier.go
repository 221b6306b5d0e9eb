package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/prompts"
	"github.com/sakhi-safety/sakhi-relay/internal/services/ai"
	"github.com/sakhi-safety/sakhi-relay/internal/services/cache"
	"github.com/sirupsen/logrus"
)

const (
	classifyTemperature = 0.0
	classifyMaxTokens   = 20
)

// emergencyKeywords force EMERGENCY without consulting the classifier
var emergencyKeywords = []string{"help", "emergency", "danger", "attack", "unsafe", "assault"}

// KeywordIntent reports EMERGENCY when the message contains any emergency keyword
func KeywordIntent(input string) (models.Intent, bool) {
	lower := strings.ToLower(input)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lower, keyword) {
			return models.IntentEmergency, true
		}
	}
	return "", false
}

// Classifier asks the LLM for the intent of a message
type Classifier struct {
	gateway  ai.Gateway
	cache    cache.IntentCache
	recorder Recorder
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewClassifier creates a classifier. A positive timeout caps each
// classification call below the gateway's own per-call limit.
func NewClassifier(gateway ai.Gateway, intentCache cache.IntentCache, recorder Recorder, timeout time.Duration, logger *logrus.Logger) *Classifier {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Classifier{
		gateway:  gateway,
		cache:    intentCache,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Classify returns the intent of input. Failed calls and unparseable
// replies both yield GENERAL; only successful answers are cached.
func (c *Classifier) Classify(ctx context.Context, input string) models.Intent {
	if c.cache != nil {
		if intent, ok := c.cache.Get(ctx, input); ok {
			c.recorder.RecordCacheHit()
			c.recorder.RecordIntent(string(intent), "cache")
			return intent
		}
		c.recorder.RecordCacheMiss()
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []models.Message{{Role: models.RoleUser, Content: prompts.ClassificationPrompt(input)}}
	result := c.gateway.Complete(callCtx, messages, classifyTemperature, classifyMaxTokens)
	if !result.OK() {
		c.logger.WithError(result.Err).WithField("outcome", result.Outcome.String()).Warn("Intent classification failed, using GENERAL")
		c.recorder.RecordIntent(string(models.IntentGeneral), "classifier")
		return models.IntentGeneral
	}

	intent := models.ParseIntent(result.Text)
	c.logger.WithFields(logrus.Fields{
		"raw":    result.Text,
		"intent": intent,
	}).Debug("Intent classified")

	if c.cache != nil {
		if err := c.cache.Set(ctx, input, intent); err != nil {
			c.logger.WithError(err).Warn("Failed to cache intent")
		}
	}
	c.recorder.RecordIntent(string(intent), "classifier")
	return intent
}
