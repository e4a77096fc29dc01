package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis instantiates the Redis client used for the public catalog
// cache. Returns nil when the server is unreachable; callers degrade by
// serving uncached reads, so a missing Redis never blocks startup.
func ConnectRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable at %s, catalog cache disabled: %v", cfg.Redis.Addr, err)
		return nil
	}

	log.Printf("✅ Redis connected [%s]", cfg.Redis.Addr)
	return client
}
