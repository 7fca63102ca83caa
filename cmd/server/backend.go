package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"futoconnect/internal/adapters/http/perf"
	"futoconnect/internal/adapters/storage"
	announcementStore "futoconnect/internal/adapters/storage/announcement"
	"futoconnect/internal/config"
)

// backend is the selected announcement store plus its lifecycle hooks.
type backend struct {
	store announcementStore.Store
	ping  func(ctx context.Context) error
	close func() error
}

// openBackend connects to and prepares the configured store.
// PRE: cfg is validated
// POST: Returns a migrated, reachable store; callers must call close
func openBackend(ctx context.Context, cfg config.Config, collector *perf.Collector) (backend, error) {
	switch cfg.Store {
	case config.StoreMongo:
		return openMongo(ctx, cfg)
	case config.StoreMemory:
		slog.Warn("store_event", "event", "memory_store", "hint", "announcements are lost on restart")
		return backend{
			store: announcementStore.NewMemoryStore(),
			close: func() error { return nil },
		}, nil
	default:
		return openSQLite(cfg, collector)
	}
}

func openSQLite(cfg config.Config, collector *perf.Collector) (backend, error) {
	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return backend{}, err
	}
	if err := storage.MigrateDB(db); err != nil {
		db.Close()
		return backend{}, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("store_event", "event", "sqlite_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())

	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	return backend{
		store: announcementStore.NewSQLiteStore(timedDB),
		ping:  timedDB.Ping,
		close: timedDB.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (backend, error) {
	client, err := announcementStore.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return backend{}, err
	}
	disconnect := func() error {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(dctx)
	}

	store := announcementStore.NewMongoStore(client.Database(cfg.MongoDB))
	if err := store.EnsureIndexes(ctx); err != nil {
		disconnect()
		return backend{}, err
	}
	slog.Info("store_event", "event", "mongo_ready", "database", cfg.MongoDB)

	return backend{
		store: store,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: disconnect,
	}, nil
}
