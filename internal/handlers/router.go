package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the chat API. metrics may be nil to leave the metrics
// endpoint unmounted.
func NewRouter(cfg *config.Config, chat *ChatHandler, limiter middleware.RateLimiter, metrics http.Handler, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.Recover(logger, chat.InternalError),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	chatRoute := http.Handler(http.HandlerFunc(chat.Chat))
	if limiter != nil {
		chatRoute = middleware.RateLimit(limiter, chat.RateLimited)(chatRoute)
	}
	// OPTIONS is routed so CORS preflight reaches the middleware
	router.Handle("/chat", chatRoute).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/health", chat.Health).Methods(http.MethodGet, http.MethodOptions)

	if metrics != nil && cfg.Monitoring.Metrics.Enabled {
		router.Handle(cfg.Monitoring.Metrics.Path, metrics).Methods(http.MethodGet)
	}

	return router
}
