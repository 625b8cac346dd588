package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open opens a SQL database for driver, applies driver settings, and retries the
// connectivity check with exponential backoff until maxWait elapses.
func Open(ctx context.Context, driver, dsn string, maxWait time.Duration, logger *zap.Logger) (*sql.DB, error) {
	const operation = "db.Open"

	sqlDriver, err := driverName(driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open %s database: %w", operation, driver, err)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = maxWait
	retryPolicy.MaxInterval = 5 * time.Second

	err = backoff.RetryNotify(
		func() error {
			return db.PingContext(ctx)
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("database ping failed, retrying",
				zap.String("driver", driver),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping %s database: %w", operation, driver, err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode = WAL;
			PRAGMA foreign_keys = ON;
			PRAGMA busy_timeout = 5000;
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: set sqlite pragmas: %w", operation, err)
		}
	}

	logger.Info("database connected", zap.String("driver", driver))
	return db, nil
}

func driverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
