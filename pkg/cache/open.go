package cache

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNull  = "null"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists the valid backend names.
var Backends = []string{BackendFile, BackendNull, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Dir is the FileCache directory. Empty means [DefaultDir].
	Dir           string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	// TTL, when positive, replaces the per-kind TTLs for every entry.
	TTL time.Duration
}

// Open creates the configured backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	c, err := open(ctx, opts)
	if err != nil || opts.TTL <= 0 {
		return c, err
	}
	return WithTTL(c, opts.TTL), nil
}

func open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, fmt.Errorf("cache dir: %w", err)
			}
		}
		return NewFileCache(dir)
	case BackendNull:
		return NewNullCache(), nil
	case BackendRedis:
		return NewRedisCache(ctx, RedisConfig{URL: opts.RedisURL, Prefix: "fishbone:"})
	case BackendMongo:
		return NewMongoCache(ctx, MongoConfig{URI: opts.MongoURI, Database: opts.MongoDatabase})
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be one of: %v)", opts.Backend, Backends)
	}
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	return name == "" || slices.Contains(Backends, name)
}

// WithTTL returns a cache that stores every entry of c with ttl.
func WithTTL(c Cache, ttl time.Duration) Cache {
	return &fixedTTL{Cache: c, ttl: ttl}
}

type fixedTTL struct {
	Cache
	ttl time.Duration
}

func (f *fixedTTL) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return f.Cache.Set(ctx, key, data, f.ttl)
}
