// Package tracker coordinates settings and products on top of the repository.
// It is the only writer of the stored blobs and serializes every update.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/products"
	"github.com/Simplici0/teekalk/internal/settings"
	"github.com/Simplici0/teekalk/internal/store"
)

// Service is the single writer of settings and products.
type Service struct {
	mu     sync.Mutex
	repo   *store.Repository
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service backed by repo.
func NewService(repo *store.Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the stored settings snapshot.
func (s *Service) Settings(ctx context.Context) (pricing.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Settings(ctx)
}

// UpdateSettings applies fn to the current snapshot and stores the result. When
// the change affects pricing, every product is recalculated in the same step.
func (s *Service) UpdateSettings(ctx context.Context, fn func(pricing.Settings) (pricing.Settings, error)) (pricing.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return pricing.Settings{}, err
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := settings.Validate(next); err != nil {
		return current, err
	}
	if err := s.replaceSettings(ctx, current, next); err != nil {
		return current, err
	}
	return next, nil
}

// ReplaceSettings stores a complete snapshot; its fixed-cost total is recomputed.
func (s *Service) ReplaceSettings(ctx context.Context, next pricing.Settings) (pricing.Settings, error) {
	return s.UpdateSettings(ctx, func(pricing.Settings) (pricing.Settings, error) {
		return settings.Normalize(next), nil
	})
}

// ResetSettings restores the factory defaults.
func (s *Service) ResetSettings(ctx context.Context) (pricing.Settings, error) {
	return s.UpdateSettings(ctx, func(pricing.Settings) (pricing.Settings, error) {
		return settings.Default(), nil
	})
}

// replaceSettings reprices every product under next before anything is written,
// so a snapshot that cannot price the catalog is rejected without side effects.
func (s *Service) replaceSettings(ctx context.Context, current, next pricing.Settings) error {
	if !settings.AffectsPricing(current, next) {
		return s.repo.SaveSettings(ctx, next)
	}

	list, err := s.repo.Products(ctx)
	if err != nil {
		return err
	}
	repriced := products.RecalculateAll(list, next, s.now())
	if err := checkPriced(repriced); err != nil {
		return err
	}

	if len(repriced) > 0 {
		if err := s.repo.SaveProducts(ctx, repriced); err != nil {
			return fmt.Errorf("store recalculated products: %w", err)
		}
	}
	if err := s.repo.SaveSettings(ctx, next); err != nil {
		if len(list) > 0 {
			if rbErr := s.repo.SaveProducts(ctx, list); rbErr != nil {
				s.logger.Error("failed to restore products after settings save failed", zap.Error(rbErr))
			}
		}
		return err
	}

	if len(repriced) > 0 {
		s.logger.Info("products recalculated after settings change", zap.Int("products", len(repriced)))
	}
	return nil
}

func checkPriced(list []products.Product) error {
	for _, p := range list {
		if !p.CalculatedCosts.Finite() {
			return fmt.Errorf("%w: product %q cannot be priced under these settings", settings.ErrInvalidValue, p.Name)
		}
	}
	return nil
}

// Products returns every stored product.
func (s *Service) Products(ctx context.Context) ([]products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Products(ctx)
}

// Product returns the product with the given id or products.ErrNotFound.
func (s *Service) Product(ctx context.Context, id string) (products.Product, error) {
	list, err := s.Products(ctx)
	if err != nil {
		return products.Product{}, err
	}

	p, ok := products.Find(list, id)
	if !ok {
		return products.Product{}, fmt.Errorf("%w: %s", products.ErrNotFound, id)
	}
	return p, nil
}

// CreateProduct validates d, prices it under the stored settings and stores it.
func (s *Service) CreateProduct(ctx context.Context, d products.Draft) (products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return products.Product{}, err
	}
	list, err := s.repo.Products(ctx)
	if err != nil {
		return products.Product{}, err
	}

	p, err := products.New(d, current, s.now())
	if err != nil {
		return products.Product{}, err
	}
	if err := s.repo.SaveProducts(ctx, append(list, p)); err != nil {
		return products.Product{}, err
	}

	s.logger.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct applies patch to the product with the given id.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch products.Patch) (products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return products.Product{}, err
	}
	list, err := s.repo.Products(ctx)
	if err != nil {
		return products.Product{}, err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return products.Product{}, fmt.Errorf("%w: %s", products.ErrNotFound, id)
	}

	updated, err := products.Apply(list[idx], patch, current, s.now())
	if err != nil {
		return products.Product{}, err
	}
	list[idx] = updated
	if err := s.repo.SaveProducts(ctx, list); err != nil {
		return products.Product{}, err
	}

	s.logger.Info("product updated", zap.String("product_id", id))
	return updated, nil
}

// DeleteProduct removes the product with the given id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.repo.Products(ctx)
	if err != nil {
		return err
	}
	rest, err := products.Remove(list, id)
	if err != nil {
		return err
	}
	if err := s.repo.SaveProducts(ctx, rest); err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// RecalculateAll reprices every product against the stored settings.
func (s *Service) RecalculateAll(ctx context.Context) ([]products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}

	out := products.RecalculateAll(list, current, s.now())
	if err := checkPriced(out); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProducts(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats computes the dashboard figures for the stored products.
func (s *Service) Stats(ctx context.Context) (products.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return products.Stats{}, err
	}
	list, err := s.repo.Products(ctx)
	if err != nil {
		return products.Stats{}, err
	}
	return products.ComputeStats(list, current), nil
}
