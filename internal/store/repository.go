package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/products"
	"github.com/Simplici0/teekalk/internal/settings"
)

const (
	SettingsKey = "tee-tracker-settings"
	ProductsKey = "tee-tracker-products"
)

// Repository reads and writes the settings and product blobs.
type Repository struct {
	blobs BlobStore
}

// NewRepository returns a Repository over blobs.
func NewRepository(blobs BlobStore) *Repository {
	return &Repository{blobs: blobs}
}

// Settings returns the stored settings, or the defaults when none are stored.
func (r *Repository) Settings(ctx context.Context) (pricing.Settings, error) {
	var s pricing.Settings
	found, err := r.load(ctx, SettingsKey, &s)
	if err != nil {
		return pricing.Settings{}, err
	}
	if !found {
		return settings.Default(), nil
	}
	return s, nil
}

// SaveSettings stores s under SettingsKey.
func (r *Repository) SaveSettings(ctx context.Context, s pricing.Settings) error {
	return r.save(ctx, SettingsKey, s)
}

// Products returns the stored products, or an empty list when none are stored.
func (r *Repository) Products(ctx context.Context) ([]products.Product, error) {
	list := make([]products.Product, 0)
	if _, err := r.load(ctx, ProductsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveProducts stores list under ProductsKey. A nil list is stored as empty.
func (r *Repository) SaveProducts(ctx context.Context, list []products.Product) error {
	if list == nil {
		list = make([]products.Product, 0)
	}
	return r.save(ctx, ProductsKey, list)
}

// Exists reports whether a blob is stored under key.
func (r *Repository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.blobs.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.blobs.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
