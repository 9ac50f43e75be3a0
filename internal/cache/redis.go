// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"plume/internal/config"
	"plume/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// errorCountingHook feeds every failed command into the Redis error counter.
// redis.Nil is a miss, not a failure.
type errorCountingHook struct{}

func (errorCountingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCountingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// parseOptions accepts either a redis:// URL or a bare host:port address.
func parseOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// Connect configures the shared client from application config, sizing the
// connection pool the same way the database layer sizes its own. The cache is
// optional: on any failure the client stays nil and every helper degrades to
// a no-op, so the application serves uncached rather than not at all.
func Connect(cfg *config.Config) {
	opts, err := parseOptions(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, continuing without cache", "url", cfg.RedisURL, "error", err)
		client = nil
		return
	}
	opts.PoolSize = cfg.RedisPoolSize
	opts.MinIdleConns = cfg.RedisMinIdleConns
	connect(opts)
}

// InitRedis connects with default pool settings. Tests use it to point the
// package at a throwaway server.
func InitRedis(addr string) {
	opts, err := parseOptions(addr)
	if err != nil {
		slog.Warn("invalid redis address, continuing without cache", "addr", addr, "error", err)
		client = nil
		return
	}
	connect(opts)
}

func connect(opts *redis.Options) {
	c := redis.NewClient(opts)
	c.AddHook(errorCountingHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, continuing without cache", "addr", opts.Addr, "error", err)
		client = nil
		return
	}

	client = c
	slog.Info("redis connected", "addr", opts.Addr, "pool_size", opts.PoolSize)
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
