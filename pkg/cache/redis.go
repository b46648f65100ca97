package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values in Redis under an optional key namespace.
type Cache struct {
	client    *redis.Client
	namespace string
}

type Options struct {
	Address     string
	Password    string
	DB          int
	Namespace   string
	DialTimeout time.Duration
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithNamespace prefixes every key, so several deployments can share a Redis.
func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.DialTimeout = d
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address:     "localhost:6379",
		Namespace:   "workforce",
		DialTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        options.Address,
		Password:    options.Password,
		DB:          options.DB,
		DialTimeout: options.DialTimeout,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", options.Address, err)
	}

	return &Cache{client: client, namespace: options.Namespace}, nil
}

// Key returns the namespaced form of key.
func (c *Cache) Key(key string) string {
	return namespaced(c.namespace, key)
}

func namespaced(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}

// Get decodes the value stored under key into dest. A missing key returns redis.Nil.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %s: %w", key, err)
	}
	return c.client.Set(ctx, c.Key(key), data, expiration).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Noop satisfies the cache contract without storing anything. Every Get is
// a miss, which read-through callers treat as a normal fetch.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error { return redis.Nil }

func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

func (Noop) Close() error { return nil }
