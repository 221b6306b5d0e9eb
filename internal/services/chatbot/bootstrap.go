package chatbot

import (
	"context"
	"fmt"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/internal/services/ai"
	"github.com/sakhi-safety/sakhi-relay/internal/services/cache"
	"github.com/sakhi-safety/sakhi-relay/internal/services/session"
	"github.com/sirupsen/logrus"
)

// Instrumentation is everything the chatbot reports to. middleware.Metrics implements it.
type Instrumentation interface {
	Recorder
	ai.Observer
}

// Initialize validates the configuration, checks the provider is reachable
// and assembles a ready processor. Any error means the chatbot must stay
// uninitialised; the caller decides whether to keep serving.
func Initialize(ctx context.Context, cfg *config.Config, catalog *resources.Catalog, localizer *i18n.Localizer, inst Instrumentation, logger *logrus.Logger) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var observer ai.Observer
	var recorder Recorder
	if inst != nil {
		observer = inst
		recorder = inst
	}

	gateway := ai.NewGroqClient(&cfg.LLM, observer, logger)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.LLM.RequestTimeout)
	defer cancel()
	if err := gateway.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("provider self-check failed: %w", err)
	}

	var intentCache cache.IntentCache
	if cfg.Cache.Enabled {
		intentCache = cache.NewCache(&cfg.Cache, logger)
	}

	notifier := session.NewLogNotifier(cfg.Session.AlertDelay, logger)
	sess := session.New(cfg.Session.SafeCircle, notifier, catalog, localizer, logger)
	classifier := NewClassifier(gateway, intentCache, recorder, cfg.LLM.ClassifyTimeout, logger)

	logger.WithFields(logrus.Fields{
		"model":       cfg.LLM.Model,
		"safe_circle": len(cfg.Session.SafeCircle),
		"cache":       cfg.Cache.Enabled,
		"turn":        cfg.Chat.TurnTimeout,
	}).Info("Chatbot initialized")

	return NewProcessor(gateway, classifier, sess, catalog, localizer, recorder, cfg.Chat.TurnTimeout, logger), nil
}
