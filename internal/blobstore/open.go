package blobstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
)

// Open builds the store selected by cfg.Store.Type.
func Open(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.Store.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "bolt", "":
		return NewBoltStore(cfg.StorePath())
	case "redis":
		r := NewRedisStore(cfg.Store.Addr)
		if err := r.WaitReady(ctx, 8); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case "postgres":
		return NewPostgresStore(cfg.Store.Dsn, cfg.System.Debug)
	default:
		return nil, errors.Errorf("unsupported store type %q", cfg.Store.Type)
	}
}
