package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/config"
	"github.com/Simplici0/teekalk/internal/db"
	"github.com/Simplici0/teekalk/internal/migrations"
)

// Open connects the BlobStore selected by cfg.StoreDriver. For the SQL drivers
// the embedded migrations run first when migrate is set.
func Open(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger) (BlobStore, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			MaxWait:  cfg.ConnectTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite, config.StorePostgres:
		database, err := db.Open(ctx, cfg.StoreDriver, cfg.DSN(), cfg.ConnectTimeout, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := migrations.Up(ctx, database, cfg.StoreDriver); err != nil {
				database.Close()
				return nil, err
			}
			logger.Info("migrations applied", zap.String("driver", cfg.StoreDriver))
		}
		s, err := NewSQLStore(database, cfg.StoreDriver)
		if err != nil {
			database.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
