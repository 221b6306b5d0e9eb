package middleware

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Message metrics
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sakhi_messages_received_total",
		Help: "Total number of chat messages received",
	})

	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sakhi_messages_processed_total",
		Help: "Total number of chat messages processed",
	}, []string{"status"})

	// Command metrics
	commandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sakhi_commands_executed_total",
		Help: "Total number of slash commands executed",
	}, []string{"command"})

	intentsDetermined = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sakhi_intents_total",
		Help: "Intents assigned to messages, by how they were determined",
	}, []string{"intent", "source"})

	// AI metrics
	aiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sakhi_ai_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "status"})

	aiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sakhi_ai_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"model", "status"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sakhi_intent_cache_hits_total",
		Help: "Total number of intent cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sakhi_intent_cache_misses_total",
		Help: "Total number of intent cache misses",
	})

	// Rate limit metrics
	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sakhi_rate_limit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	// Safety metrics
	safetyTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sakhi_safety_transitions_total",
		Help: "Safety status changes",
	}, []string{"from", "to"})

	alertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sakhi_safe_circle_alerts_total",
		Help: "Total number of safe circle alerts triggered",
	})

	chatbotInitialized = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sakhi_chatbot_initialized",
		Help: "1 when the chatbot passed its startup self-check",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordMessageReceived records a received message
func (m *Metrics) RecordMessageReceived() {
	messagesReceived.Inc()
}

// RecordMessageProcessed records a processed message
func (m *Metrics) RecordMessageProcessed(status string) {
	messagesProcessed.WithLabelValues(status).Inc()
}

// RecordCommandExecuted records an executed command
func (m *Metrics) RecordCommandExecuted(command string) {
	commandsExecuted.WithLabelValues(command).Inc()
}

// RecordIntent records the intent chosen for a message. source is
// "keyword", "cache" or "classifier".
func (m *Metrics) RecordIntent(intent, source string) {
	intentsDetermined.WithLabelValues(intent, source).Inc()
}

// RecordAIRequest records an AI request
func (m *Metrics) RecordAIRequest(model, status string, duration time.Duration) {
	aiRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
	aiRequestsTotal.WithLabelValues(model, status).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordRateLimitExceeded records a rate limit exceeded event
func (m *Metrics) RecordRateLimitExceeded() {
	rateLimitExceeded.Inc()
}

func (m *Metrics) RecordSafetyTransition(from, to string) {
	safetyTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordAlertSent() {
	alertsSent.Inc()
}

func (m *Metrics) SetInitialized(ok bool) {
	if ok {
		chatbotInitialized.Set(1)
		return
	}
	chatbotInitialized.Set(0)
}

// Handler exposes the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
