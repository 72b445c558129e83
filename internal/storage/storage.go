// Package storage opens the store backend named by the configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/go-delivery-marketplace/internal/config"
	"github.com/ariefcatur/go-delivery-marketplace/internal/filestore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/mongostore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/postgres"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		b, err := filestore.Open(cfg.StoreFile)
		if err != nil {
			return nil, err
		}
		log.Info("store opened", "driver", cfg.StoreDriver, "path", cfg.StoreFile)
		return store.New(b), nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("store opened", "driver", cfg.StoreDriver)
		return store.New(&postgres.Backend{DB: db}), nil

	case config.DriverMongo:
		b, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		log.Info("store opened", "driver", cfg.StoreDriver, "db", cfg.MongoDB)
		return store.New(b), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
