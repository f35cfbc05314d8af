package server

import (
	"context"
	"fmt"

	"github.com/Dias221467/Questline/internal/cache"
	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/internal/database"
	"github.com/Dias221467/Questline/internal/repository/memory"
	"github.com/Dias221467/Questline/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// Open connects the configured store and denylist and wires the app. The
// returned close func releases both. db is nil for the memory store.
func Open(ctx context.Context, cfg *config.Config) (app *App, db *mongo.Database, closeFn func(), err error) {
	var closers []func()
	closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repos Repositories
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Log.Warn("Using the in-memory store; data is lost on restart")
		repos = MemoryRepositories(memory.New())
	case config.StoreMongo:
		db, err = database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, nil, closeFn, err
		}
		closers = append(closers, func() { _ = db.Client().Disconnect(context.Background()) })
		repos = MongoRepositories(db)
	default:
		return nil, nil, closeFn, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	var denylist cache.Denylist
	if cfg.RedisAddr != "" {
		redisList, err := cache.NewRedisDenylist(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, keeping revoked tokens in memory")
		} else {
			closers = append(closers, func() { _ = redisList.Close() })
			denylist = redisList
		}
	}

	return NewApp(cfg, repos, denylist), db, closeFn, nil
}
