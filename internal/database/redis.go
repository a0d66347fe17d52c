package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to redis and verifies the connection. Redis is
// optional; it backs the idempotency middleware on payment recording.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
