// Package db opens the optional PostgreSQL pool used for the order audit trail.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/campusq/config"
)

// ApplicationName tags every connection so audit writes are easy to find in pg_stat_activity.
const ApplicationName = "campusq"

// ErrDisabled is returned when POSTGRES_ENABLED is false.
var ErrDisabled = errors.New("postgres: disabled")

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// poolConfig turns the campus settings into a pgxpool config.
//
// The audit trail issues one INSERT per order event, so the pool is kept small:
//   - MaxConns is at least 1
//   - MinConns never exceeds MaxConns
//   - idle connections are recycled after 15 minutes
func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	if poolCfg.MaxConns < 1 {
		poolCfg.MaxConns = 1
	}
	poolCfg.MinConns = cfg.MinConns
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.MaxConnIdleTime = 15 * time.Minute

	poolCfg.ConnConfig.ConnectTimeout = connectTimeout
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	return poolCfg, nil
}

// NewPostgresPool creates the pool and pings it once so a bad DSN fails at
// startup instead of on the first order event.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return pool, nil
}

// Status reports the pool for /health: "disabled" without a pool,
// otherwise "healthy" or "unhealthy: <reason>".
func Status(ctx context.Context, pool *pgxpool.Pool) (string, bool) {
	if pool == nil {
		return "disabled", true
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return "unhealthy: " + err.Error(), false
	}
	stat := pool.Stat()
	return fmt.Sprintf("healthy (%d/%d conns)", stat.AcquiredConns(), stat.MaxConns()), true
}
