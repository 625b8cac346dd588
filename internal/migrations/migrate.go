package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/Simplici0/teekalk/internal/db"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Up runs all pending embedded migrations for the given database driver.
func Up(ctx context.Context, database *sql.DB, driver string) error {
	if err := setup(driver); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, database, dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

func setup(driver string) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(files)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case db.DriverSQLite:
		return "sqlite3", nil
	case db.DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
}
