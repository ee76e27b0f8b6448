package config

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates the Redis client for the enrollment event trail.
// Returns nil when no address is configured; the trail is optional.
func NewRedisClient(cfg *CatalogConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,

		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: 30 * time.Minute,
		ConnMaxLifetime: time.Hour,
	})
}
