package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Allow(clientID string) bool
	Reset(clientID string)
}

// ClientRateLimiter implements per-client rate limiting keyed by remote address
type ClientRateLimiter struct {
	enabled         bool
	limiters        map[string]*clientLimiter
	mu              sync.Mutex
	rpm             int
	burst           int
	logger          *logrus.Logger
	cleanupInterval time.Duration
	idleTimeout     time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.RateLimitConfig, logger *logrus.Logger) *ClientRateLimiter {
	if !cfg.Enabled {
		return &ClientRateLimiter{enabled: false}
	}

	rl := &ClientRateLimiter{
		enabled:         true,
		limiters:        make(map[string]*clientLimiter),
		rpm:             cfg.RequestsPerMinute,
		burst:           cfg.Burst,
		logger:          logger,
		cleanupInterval: 5 * time.Minute,
		idleTimeout:     10 * time.Minute,
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a client is allowed to make a request
func (r *ClientRateLimiter) Allow(clientID string) bool {
	if !r.enabled {
		return true
	}

	allowed := r.getLimiter(clientID).Allow()
	if !allowed {
		r.logger.WithField("client", clientID).Warn("Rate limit exceeded")
	}
	return allowed
}

// Reset resets the rate limiter for a client
func (r *ClientRateLimiter) Reset(clientID string) {
	if !r.enabled {
		return
	}

	r.mu.Lock()
	delete(r.limiters, clientID)
	r.mu.Unlock()
}

func (r *ClientRateLimiter) getLimiter(clientID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cl, exists := r.limiters[clientID]; exists {
		cl.lastSeen = time.Now()
		return cl.limiter
	}

	// Rate per second = RPM / 60
	rps := float64(r.rpm) / 60.0
	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), r.burst),
		lastSeen: time.Now(),
	}
	r.limiters[clientID] = cl
	return cl.limiter
}

// cleanup removes limiters of clients that went quiet
func (r *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-r.idleTimeout)
		r.mu.Lock()
		for id, cl := range r.limiters {
			if cl.lastSeen.Before(cutoff) {
				delete(r.limiters, id)
			}
		}
		r.mu.Unlock()
	}
}

// ClientID identifies the caller by the first X-Forwarded-For hop or the remote IP
func ClientID(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limit by calling onReject instead of next
func RateLimit(limiter RateLimiter, onReject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow(ClientID(req)) {
				onReject(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
