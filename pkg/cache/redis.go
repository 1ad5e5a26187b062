// Package cache connects to the optional Redis instance that mirrors the live
// congestion snapshot for other processes.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiva/campusq/config"
)

// ClientName is sent with CLIENT SETNAME so the publisher shows up in CLIENT LIST.
const ClientName = "campusq"

// ErrDisabled is returned when REDIS_ENABLED is false.
var ErrDisabled = errors.New("redis: disabled")

const (
	defaultPoolSize = 4
	dialTimeout     = 5 * time.Second
	pingTimeout     = 2 * time.Second
)

// options builds client options from the campus settings.
//
// One pipeline per congestion tick plus /health pings is all the traffic, so
// the pool only needs a couple of idle connections. Reads and writes share the
// snapshot publish budget of the scheduler.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	minIdle := 2
	if minIdle > poolSize {
		minIdle = poolSize
	}

	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   ClientName,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
		DialTimeout:  dialTimeout,
		ReadTimeout:  pingTimeout,
		WriteTimeout: pingTimeout,
	}, nil
}

// NewRedisClient dials Redis and pings it once so a bad address fails at startup.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}

// Status reports the client for /health: "disabled" without a client,
// otherwise "healthy" or "unhealthy: <reason>".
func Status(ctx context.Context, client *redis.Client) (string, bool) {
	if client == nil {
		return "disabled", true
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return "unhealthy: " + err.Error(), false
	}
	return "healthy", true
}
