package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tair/membership-platform/pkg/logger"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL time.Duration
	// PathPrefixes is the allowlist of cacheable routes. Checkout, member and
	// webhook routes must never be served from cache.
	PathPrefixes []string
}

// CatalogCacheConfig caches the public catalog reads. Event and level rows
// change rarely and tolerate short staleness; everything else on the gateway
// is either a write or per-user.
func CatalogCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:          time.Minute,
		PathPrefixes: []string{"/api/events", "/api/levels"},
	}
}

// CacheMiddleware serves allowlisted GET responses from Redis
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		if !isPathCacheable(c.Path(), config.PathPrefixes) {
			return c.Next()
		}
		// Authenticated reads may be personalized; pass them through.
		if c.Get("Authorization") != "" {
			return c.Next()
		}

		cacheKey := cacheKeyFor(c)

		cached, err := redisClient.Get(c.UserContext(), cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err = c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			body := c.Response().Body()
			if setErr := redisClient.Set(c.UserContext(), cacheKey, body, config.TTL).Err(); setErr != nil {
				logger.Logger.Warn().
					Err(setErr).
					Str("path", c.Path()).
					Msg("Failed to cache catalog response")
			} else {
				logger.Logger.Debug().
					Str("path", c.Path()).
					Dur("ttl", config.TTL).
					Int("size", len(body)).
					Msg("Catalog response cached")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

func isPathCacheable(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func cacheKeyFor(c *fiber.Ctx) string {
	raw := fmt.Sprintf("%s?%s", c.Path(), c.Request().URI().QueryString())
	hash := sha256.Sum256([]byte(raw))
	return "cache:" + hex.EncodeToString(hash[:])
}
