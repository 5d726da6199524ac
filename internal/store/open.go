package store

import (
	"context"
	"fmt"
)

// Backend selects a Storage implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Options configures OpenStorage.
type Options struct {
	Backend       Backend
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
}

// OpenStorage connects the configured backend.
func OpenStorage(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStorage(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file storage requires a directory")
		}
		return NewFileStorage(opts.Dir)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return ConnectRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres storage requires a database URL")
		}
		return ConnectPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
