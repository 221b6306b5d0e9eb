package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/handlers"
	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/middleware"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/internal/services/chatbot"
	"github.com/sakhi-safety/sakhi-relay/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting Sakhi relay...")

	localizer, err := i18n.NewLocalizer(&cfg.I18n)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}
	log.WithField("default_language", localizer.DefaultLanguage()).Info("Localizer ready")

	catalog := resources.Load()
	metrics := middleware.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed startup check leaves the chatbot uninitialised; the server
	// still listens so /health can report it.
	var processor handlers.MessageProcessor
	if p, err := chatbot.Initialize(ctx, cfg, catalog, localizer, metrics, log); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.WithError(err).Error("Configuration error, Sakhi cannot start. Please ensure your Groq API key is correctly set.")
		} else {
			log.WithError(err).Error("Critical startup error, Sakhi cannot start")
		}
	} else {
		processor = p
	}
	metrics.SetInitialized(processor != nil)

	var limiter middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(&cfg.RateLimit, log)
	}

	chatHandler := handlers.NewChatHandler(processor, &cfg.Chat, catalog, localizer, metrics, log)
	router := handlers.NewRouter(cfg, chatHandler, limiter, metrics.Handler(), log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"initialized": processor != nil,
			"metrics":     cfg.Monitoring.Metrics.Enabled,
		}).Info("HTTP server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	log.Info("Server stopped")
}
