package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis connects to the Redis instance backing the commission
// dispatch latch. The latch is a tiny SETNX/DEL workload, so the client
// keeps short timeouts and default pooling. Returns nil when Redis is
// unreachable: the engine's ledger check stays authoritative and the
// latch is simply skipped.
func ConnectRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		log.Println("Commission double-submit latch disabled")
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
