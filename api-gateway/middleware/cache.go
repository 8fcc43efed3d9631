package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/deshimart/commerce/pkg/logger"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL      time.Duration
	Prefixes []string
}

// DefaultCacheConfig caches the public storefront reads. Orders, payments and
// anything admin never hit the cache.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: time.Minute,
		Prefixes: []string{
			"/api/products",
			"/api/categories",
		},
	}
}

// CacheMiddleware serves storefront GET responses from Redis
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || c.Method() != fiber.MethodGet || !cacheablePath(c.Path(), config.Prefixes) {
			return c.Next()
		}

		cacheKey := generateCacheKey(c)
		ctx := context.Background()

		if cached, err := redisClient.Get(ctx, cacheKey).Bytes(); err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err := c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			body := c.Response().Body()
			if cacheErr := redisClient.Set(ctx, cacheKey, body, config.TTL).Err(); cacheErr != nil {
				logger.Logger.Warn().
					Err(cacheErr).
					Str("path", c.Path()).
					Msg("Failed to cache response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

func cacheablePath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func generateCacheKey(c *fiber.Ctx) string {
	components := fmt.Sprintf("%s:%s:%s",
		c.Method(),
		c.Path(),
		string(c.Request().URI().QueryString()),
	)
	hash := sha256.Sum256([]byte(components))
	return "cache:" + hex.EncodeToString(hash[:])
}
