// Package kv provides the opaque key-value persistence used for consultation
// history. Backends: in-memory, SQLite, Postgres and Redis.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownDriver = errors.New("kv: unknown driver")

// Store is a string key-value store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	Driver      string // memory, sqlite, postgres, redis
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
}

// Open builds the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, opts.DatabaseURL)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
