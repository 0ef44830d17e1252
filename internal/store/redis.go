package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// Namespace is prepended to every key, e.g. "jobfeed:".
	Namespace string
}

var ErrEmptyAddress = errors.New("redis address is required")

// Redis is a key-value store backed by a Redis server, for shells that keep
// their storage off-device.
type Redis struct {
	client    *redis.Client
	namespace string
}

// OpenRedis connects and pings the server.
func OpenRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedis(client, cfg.Namespace), nil
}

func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return b, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys scans for keys starting with prefix. SCAN has no stable order, so
// the result is sorted (and deduplicated, SCAN may repeat a key).
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := globEscape(r.namespace+prefix) + "*"

	var keys []string
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	sort.Strings(keys)
	out := keys[:0]
	for _, k := range keys {
		if len(out) > 0 && out[len(out)-1] == k {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
