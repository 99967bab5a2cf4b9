package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config points at the Redis instance backing the location cache.
type Config struct {
	Addr        string
	Password    string
	DB          int
	PingTimeout time.Duration // zero means five seconds
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// Connect returns a client once the server answers a ping. Callers own the
// client and must Close it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = pingTimeout
	}

	client := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("location cache at %s unreachable: %w", cfg.Addr, err)
	}
	return client, nil
}
