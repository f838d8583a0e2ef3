package redisdb

import (
	"geo-news/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient returns nil when no redis address is configured; callers treat a
// nil client as "no cache".
func NewClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
