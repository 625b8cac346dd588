package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/config"
	"github.com/Simplici0/teekalk/internal/export"
	"github.com/Simplici0/teekalk/internal/logging"
	"github.com/Simplici0/teekalk/internal/seed"
	"github.com/Simplici0/teekalk/internal/store"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the stored products as CSV or XLSX",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "csv", Usage: "Export format (csv, xlsx)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default tee-kalkulation-<date>.<format>)"},
			&cli.StringSliceFlag{Name: "id", Usage: "Only export these product ids (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			write := export.WriteCSV
			switch format {
			case "csv":
			case "xlsx":
				write = export.WriteXLSX
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			return withRepository(c.Context, false, func(repo *store.Repository, logger *zap.Logger) error {
				list, err := repo.Products(c.Context)
				if err != nil {
					return err
				}
				selected := export.Select(list, c.StringSlice("id"))

				out := c.String("out")
				if out == "" {
					out = export.FileName(time.Now(), format)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := write(f, selected); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", out, err)
				}

				logger.Info("export written", zap.String("file", out), zap.Int("products", len(selected)))
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Migrate the configured store and write default settings",
		Action: func(c *cli.Context) error {
			return withRepository(c.Context, true, func(repo *store.Repository, logger *zap.Logger) error {
				stats, err := seed.Run(c.Context, repo)
				if err != nil {
					return err
				}
				logger.Info("seed completed", zap.Int("inserts", stats.Inserts))
				return nil
			})
		},
	}
}

// withRepository opens the store described by the environment for the duration of fn.
func withRepository(ctx context.Context, migrate bool, fn func(*store.Repository, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return err
	}
	defer logger.Sync()

	blobs, err := store.Open(ctx, cfg, migrate || cfg.IsDev(), logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer blobs.Close()

	return fn(store.NewRepository(blobs), logger)
}
