// Package postgres persists combat profiles in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
)

// Pool is the connection pool shared by every repository.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to the database named by cfg and pings it once.
//
// Precondition: cfg passes config validation with Enabled set; logger must be non-nil.
// Postcondition: Returns a reachable Pool or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	start := time.Now()
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// Profiles returns a profile repository on this pool.
func (p *Pool) Profiles() *ProfileRepository {
	return NewProfileRepository(p.pool)
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Watch pings the database every interval until ctx ends. onChange is called
// each time the database goes from reachable to unreachable or back; the
// pool starts out reachable.
//
// Precondition: interval and timeout must be > 0.
func (p *Pool) Watch(ctx context.Context, interval, timeout time.Duration, onChange func(up bool)) {
	up := true
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := p.Health(ctx, timeout)
		if ctx.Err() != nil {
			return
		}
		if (err == nil) == up {
			continue
		}
		up = err == nil
		if up {
			p.logger.Info("database reachable again")
		} else {
			p.logger.Warn("database unreachable", zap.Error(err))
		}
		if onChange != nil {
			onChange(up)
		}
	}
}

// Close releases every connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool for repositories and tests.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
