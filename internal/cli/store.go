package cli

import (
	"context"

	"github.com/matzehuels/dagopt/pkg/config"
	"github.com/matzehuels/dagopt/pkg/store"
)

// openStore builds the snapshot store selected by cfg.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	case "none":
		return store.NewNullStore(), nil
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}
