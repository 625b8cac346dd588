// Package settings manages the global pricing settings snapshot. Every operation
// returns a new snapshot; the input is never modified.
package settings

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/teekalk/internal/pricing"
)

// Errors reported by settings operations.
var (
	ErrNotFound        = errors.New("settings entry not found")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrInvalidValue    = errors.New("invalid settings value")
)

// Default returns the factory settings. Shipping and fixed-cost ids are fresh on every call.
func Default() pricing.Settings {
	fixedCosts := []pricing.FixedCostItem{
		{ID: uuid.NewString(), Name: "Webflow/Hosting", MonthlyCost: 23},
		{ID: uuid.NewString(), Name: "Domain", MonthlyCost: 2},
		{ID: uuid.NewString(), Name: "Tools (Buchhaltung etc.)", MonthlyCost: 30},
		{ID: uuid.NewString(), Name: "Lager/Miete", MonthlyCost: 0},
	}

	return pricing.Settings{
		DefaultShippingCost: 3.99,
		ShippingOptions: []pricing.ShippingOption{
			{ID: uuid.NewString(), Name: "DHL Warenpost", MaxWeight: 1, Price: 3.99},
			{ID: uuid.NewString(), Name: "DHL Paket S", MaxWeight: 2, Price: 4.99},
			{ID: uuid.NewString(), Name: "DHL Paket M", MaxWeight: 5, Price: 5.99},
		},
		PaymentProvider: "stripe",
		PaymentProviders: []pricing.PaymentProviderConfig{
			{ID: "stripe", Name: "Stripe", FeePercent: 1.5, FeeFixed: 0.25},
			{ID: "paypal", Name: "PayPal", FeePercent: 2.49, FeeFixed: 0.35},
			{ID: "klarna", Name: "Klarna", FeePercent: 2.99, FeeFixed: 0.35},
		},
		MonthlyFixedCosts:      fixedCosts,
		TotalMonthlyFixedCosts: TotalFixedCosts(fixedCosts),
		ExpectedMonthlySales:   100,
		VATRate:                0.07,
	}
}

// TotalFixedCosts sums the monthly costs in decimal to avoid float drift over many items.
// A non-finite item makes the total NaN, which Validate rejects.
func TotalFixedCosts(items []pricing.FixedCostItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		if !pricing.Finite(item.MonthlyCost) {
			return math.NaN()
		}
		sum = sum.Add(decimal.NewFromFloat(item.MonthlyCost))
	}
	return sum.InexactFloat64()
}

// Normalize recomputes derived fields of a snapshot that was replaced wholesale.
func Normalize(s pricing.Settings) pricing.Settings {
	s = clone(s)
	s.TotalMonthlyFixedCosts = TotalFixedCosts(s.MonthlyFixedCosts)
	return s
}

// Validate checks the ranges the calculation relies on.
func Validate(s pricing.Settings) error {
	if !finite(s) {
		return fmt.Errorf("%w: values must be finite numbers", ErrInvalidValue)
	}
	if len(s.PaymentProviders) == 0 {
		return fmt.Errorf("%w: payment provider catalog is empty", ErrInvalidValue)
	}
	if s.DefaultShippingCost < 0 {
		return fmt.Errorf("%w: defaultShippingCost must be >= 0", ErrInvalidValue)
	}
	if s.ExpectedMonthlySales < 0 {
		return fmt.Errorf("%w: expectedMonthlySales must be >= 0", ErrInvalidValue)
	}
	if !pricing.Finite(pricing.FixedCostAllocation(s.TotalMonthlyFixedCosts, s.ExpectedMonthlySales)) {
		return fmt.Errorf("%w: expectedMonthlySales is too small to spread the fixed costs", ErrInvalidValue)
	}
	if s.VATRate < 0 || s.VATRate >= 1 {
		return fmt.Errorf("%w: vatRate must be in [0, 1)", ErrInvalidValue)
	}
	for _, p := range s.PaymentProviders {
		if p.FeePercent < 0 || p.FeePercent >= 100 || p.FeeFixed < 0 {
			return fmt.Errorf("%w: provider %q has invalid fees", ErrInvalidValue, p.ID)
		}
	}
	for _, item := range s.MonthlyFixedCosts {
		if item.MonthlyCost < 0 {
			return fmt.Errorf("%w: fixed cost %q must be >= 0", ErrInvalidValue, item.Name)
		}
	}
	return nil
}

func finite(s pricing.Settings) bool {
	if !pricing.Finite(s.DefaultShippingCost, s.TotalMonthlyFixedCosts, s.ExpectedMonthlySales, s.VATRate) {
		return false
	}
	for _, p := range s.PaymentProviders {
		if !pricing.Finite(p.FeePercent, p.FeeFixed) {
			return false
		}
	}
	for _, item := range s.MonthlyFixedCosts {
		if !pricing.Finite(item.MonthlyCost) {
			return false
		}
	}
	for _, o := range s.ShippingOptions {
		if !pricing.Finite(o.MaxWeight, o.Price) {
			return false
		}
	}
	return true
}

// AffectsPricing reports whether switching from old to next changes any product calculation.
func AffectsPricing(old, next pricing.Settings) bool {
	return old.DefaultShippingCost != next.DefaultShippingCost ||
		old.Provider() != next.Provider() ||
		old.TotalMonthlyFixedCosts != next.TotalMonthlyFixedCosts ||
		old.ExpectedMonthlySales != next.ExpectedMonthlySales ||
		old.VATRate != next.VATRate
}

// WithDefaultShippingCost sets the per-unit shipping cost used by every calculation.
func WithDefaultShippingCost(s pricing.Settings, cost float64) (pricing.Settings, error) {
	if !nonNegative(cost) {
		return s, fmt.Errorf("%w: shipping cost must be >= 0", ErrInvalidValue)
	}
	s = clone(s)
	s.DefaultShippingCost = cost
	return s, nil
}

// WithPaymentProvider selects a provider from the catalog.
func WithPaymentProvider(s pricing.Settings, id string) (pricing.Settings, error) {
	if !slices.ContainsFunc(s.PaymentProviders, func(p pricing.PaymentProviderConfig) bool { return p.ID == id }) {
		return s, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	s = clone(s)
	s.PaymentProvider = id
	return s, nil
}

// WithExpectedMonthlySales sets the unit volume fixed costs are spread over.
func WithExpectedMonthlySales(s pricing.Settings, sales float64) (pricing.Settings, error) {
	if !nonNegative(sales) {
		return s, fmt.Errorf("%w: expected monthly sales must be >= 0", ErrInvalidValue)
	}
	s = clone(s)
	s.ExpectedMonthlySales = sales
	return s, nil
}

// nonNegative is false for negative numbers, NaN and ±Inf.
func nonNegative(v float64) bool {
	return v >= 0 && pricing.Finite(v)
}

func clone(s pricing.Settings) pricing.Settings {
	s.ShippingOptions = slices.Clone(s.ShippingOptions)
	s.PaymentProviders = slices.Clone(s.PaymentProviders)
	s.MonthlyFixedCosts = slices.Clone(s.MonthlyFixedCosts)
	return s
}
