package seed

import (
	"context"
	"fmt"

	"github.com/Simplici0/teekalk/internal/products"
	"github.com/Simplici0/teekalk/internal/settings"
	"github.com/Simplici0/teekalk/internal/store"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run writes the default settings and an empty product list when they are
// missing. Existing blobs are never touched, so repeated runs are no-ops.
func Run(ctx context.Context, repo *store.Repository) (Stats, error) {
	stats := Stats{}

	if err := ensureSettings(ctx, repo, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureProducts(ctx, repo, &stats); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, repo *store.Repository, stats *Stats) error {
	exists, err := repo.Exists(ctx, store.SettingsKey)
	if err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := repo.SaveSettings(ctx, settings.Default()); err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureProducts(ctx context.Context, repo *store.Repository, stats *Stats) error {
	exists, err := repo.Exists(ctx, store.ProductsKey)
	if err != nil {
		return fmt.Errorf("check products existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := repo.SaveProducts(ctx, make([]products.Product, 0)); err != nil {
		return fmt.Errorf("insert empty product list: %w", err)
	}
	stats.Inserts++
	return nil
}
