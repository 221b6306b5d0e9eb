package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sirupsen/logrus"
)

// IntentCache remembers classifier answers for recently seen messages.
// Classification runs at temperature 0, so a repeated message gets the same label.
type IntentCache interface {
	Get(ctx context.Context, message string) (models.Intent, bool)
	Set(ctx context.Context, message string, intent models.Intent) error
	Clear(ctx context.Context) error
}

type entry struct {
	Intent    models.Intent
	CreatedAt time.Time
}

// Cache implements IntentCache on top of go-cache
type Cache struct {
	enabled bool
	cache   *cache.Cache
	logger  *logrus.Logger
	maxSize int
}

// NewCache creates a new intent cache
func NewCache(cfg *config.CacheConfig, logger *logrus.Logger) IntentCache {
	if !cfg.Enabled {
		return &Cache{enabled: false}
	}

	return &Cache{
		enabled: true,
		cache:   cache.New(cfg.TTL, cfg.TTL*2),
		logger:  logger,
		maxSize: cfg.MaxSize,
	}
}

// Get retrieves a cached intent
func (c *Cache) Get(ctx context.Context, message string) (models.Intent, bool) {
	if !c.enabled {
		return "", false
	}

	if val, found := c.cache.Get(c.generateKey(message)); found {
		e := val.(*entry)
		c.logger.WithFields(logrus.Fields{
			"intent": e.Intent,
			"age":    time.Since(e.CreatedAt),
		}).Debug("Intent cache hit")
		return e.Intent, true
	}

	return "", false
}

// Set stores an intent for message
func (c *Cache) Set(ctx context.Context, message string, intent models.Intent) error {
	if !c.enabled {
		return nil
	}

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.logger.Warn("Intent cache size limit reached, dropping expired entries")
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxSize {
			c.cache.Flush()
		}
	}

	c.cache.SetDefault(c.generateKey(message), &entry{
		Intent:    intent,
		CreatedAt: time.Now(),
	})

	return nil
}

// Clear removes all cached entries
func (c *Cache) Clear(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	c.cache.Flush()
	c.logger.Info("Intent cache cleared")
	return nil
}

// generateKey hashes the normalized message so raw user text is not kept as a key
func (c *Cache) generateKey(message string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}
