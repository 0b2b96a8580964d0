package blobstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RedisStore keeps snapshots as plain redis string values.
type RedisStore struct {
	client *redis.Client
	addr   string
}

// NewRedisStore accepts either a redis:// URL or a bare host:port address.
func NewRedisStore(addr string) *RedisStore {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		}
	}
	return &RedisStore{client: redis.NewClient(opts), addr: addr}
}

// WaitReady pings redis with exponential backoff until it answers, the
// attempts run out or ctx is done.
func (r *RedisStore) WaitReady(ctx context.Context, attempts int) error {
	for i := 0; i < attempts; i++ {
		if r.Ping(ctx) {
			return nil
		}
		backoff := time.Duration(250*(1<<uint(i))) * time.Millisecond
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
		zap.L().Info("redis blob store not ready", zap.String("addr", r.addr), zap.Int("attempt", i+1), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("redis %s not reachable after %d attempts", r.addr, attempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", key)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.client.Ping(pingCtx).Err(); err != nil {
		zap.L().Warn("redis blob store ping failed", zap.String("addr", r.addr), zap.Error(err))
		return false
	}
	return true
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
