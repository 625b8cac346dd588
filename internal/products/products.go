// Package products holds the product lifecycle around the pricing engine:
// creation, patching, batch recalculation and dashboard statistics.
package products

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/teekalk/internal/pricing"
)

// Errors reported by product operations. ErrInvalid wraps every validation failure.
var (
	ErrNotFound = errors.New("product not found")
	ErrInvalid  = errors.New("invalid product")
)

// Category is the tea family of a product.
type Category string

const (
	CategoryBlackTea  Category = "schwarztee"
	CategoryGreenTea  Category = "gruentee"
	CategoryHerbalTea Category = "kraeutertee"
	CategoryFruitTea  Category = "fruechtetee"
)

// Valid reports whether c is one of the known tea categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBlackTea, CategoryGreenTea, CategoryHerbalTea, CategoryFruitTea:
		return true
	}
	return false
}

// Product is a stored tea product with its last calculation.
type Product struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	SKU                string                  `json:"sku"`
	Category           Category                `json:"category"`
	WeightGrams        float64                 `json:"weightGrams"`
	Ingredients        []pricing.Ingredient    `json:"ingredients"`
	Packaging          pricing.Packaging       `json:"packaging"`
	TargetMargin       float64                 `json:"targetMargin"`
	SellingPriceBrutto float64                 `json:"sellingPriceBrutto"`
	CalculatedCosts    pricing.CalculatedCosts `json:"calculatedCosts"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

// Draft is the input for a new product. A zero SellingPriceBrutto means the
// price is derived from TargetMargin.
type Draft struct {
	Name               string               `json:"name"`
	SKU                string               `json:"sku"`
	Category           Category             `json:"category"`
	WeightGrams        float64              `json:"weightGrams"`
	Ingredients        []pricing.Ingredient `json:"ingredients"`
	Packaging          pricing.Packaging    `json:"packaging"`
	TargetMargin       float64              `json:"targetMargin"`
	SellingPriceBrutto float64              `json:"sellingPriceBrutto"`
}

// Validate checks the ranges the calculation relies on. Blend percentages are
// not required to sum to 100.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, d.Category)
	}
	if !(d.WeightGrams > 0) || !pricing.Finite(d.WeightGrams) {
		return fmt.Errorf("%w: weightGrams must be > 0", ErrInvalid)
	}
	if err := validateIngredients(d.Ingredients); err != nil {
		return err
	}
	if err := validatePackaging(d.Packaging); err != nil {
		return err
	}
	if !validMargin(d.TargetMargin) {
		return fmt.Errorf("%w: targetMargin must be in [0, 1)", ErrInvalid)
	}
	if !nonNegative(d.SellingPriceBrutto) {
		return fmt.Errorf("%w: sellingPriceBrutto must be >= 0", ErrInvalid)
	}
	return nil
}

func validateIngredients(ingredients []pricing.Ingredient) error {
	for _, ing := range ingredients {
		if !nonNegative(ing.PercentageOfBlend) || ing.PercentageOfBlend > 100 {
			return fmt.Errorf("%w: ingredient %q percentageOfBlend must be in [0, 100]", ErrInvalid, ing.Name)
		}
		if !nonNegative(ing.PricePerKg) {
			return fmt.Errorf("%w: ingredient %q pricePerKg must be >= 0", ErrInvalid, ing.Name)
		}
	}
	return nil
}

// nonNegative is false for negative numbers, NaN and ±Inf.
func nonNegative(v float64) bool {
	return v >= 0 && pricing.Finite(v)
}

func validMargin(m float64) bool {
	return m >= 0 && m < 1
}

func validatePackaging(p pricing.Packaging) error {
	if !nonNegative(p.BagCost) || !nonNegative(p.LabelCost) || !nonNegative(p.BoxCost) {
		return fmt.Errorf("%w: packaging costs must be >= 0", ErrInvalid)
	}
	return nil
}

// New creates a product with a fresh id and a calculation at its selling price.
func New(d Draft, s pricing.Settings, now time.Time) (Product, error) {
	if err := d.Validate(); err != nil {
		return Product{}, err
	}

	p := Product{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(d.Name),
		SKU:                strings.TrimSpace(d.SKU),
		Category:           d.Category,
		WeightGrams:        d.WeightGrams,
		Ingredients:        withIngredientIDs(d.Ingredients),
		Packaging:          d.Packaging,
		TargetMargin:       d.TargetMargin,
		SellingPriceBrutto: d.SellingPriceBrutto,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.SellingPriceBrutto == 0 {
		p.SellingPriceBrutto = RecommendedPrice(p, s).Brutto
	}
	p.CalculatedCosts = calculate(p, s)
	if err := checkPriced(p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// checkPriced rejects calculations that overflowed, e.g. under a vanishingly
// small sales volume. Such values cannot be stored or exported.
func checkPriced(p Product) error {
	if !pricing.Finite(p.SellingPriceBrutto) || !p.CalculatedCosts.Finite() {
		return fmt.Errorf("%w: %q cannot be priced under the current settings", ErrInvalid, p.Name)
	}
	return nil
}

func withIngredientIDs(ingredients []pricing.Ingredient) []pricing.Ingredient {
	out := slices.Clone(ingredients)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

func calculate(p Product, s pricing.Settings) pricing.CalculatedCosts {
	return pricing.CalculateCostsFromPrice(p.Ingredients, p.Packaging, p.WeightGrams, p.SellingPriceBrutto, s)
}

// RecommendedPrice is the price that reaches the product's target margin under s.
func RecommendedPrice(p Product, s pricing.Settings) pricing.Price {
	return pricing.RecommendedPrice(p.Ingredients, p.Packaging, p.WeightGrams, p.TargetMargin, s)
}

// TargetCosts is the breakdown at the recommended price for the target margin.
func TargetCosts(p Product, s pricing.Settings) pricing.CalculatedCosts {
	return pricing.CalculateAllCosts(p.Ingredients, p.Packaging, p.WeightGrams, p.TargetMargin, s)
}

// Recalculate replaces the stored calculation using s.
func Recalculate(p Product, s pricing.Settings, now time.Time) Product {
	p.CalculatedCosts = calculate(p, s)
	p.UpdatedAt = now
	return p
}

// RecalculateAll reprices every product against a new settings snapshot.
func RecalculateAll(list []Product, s pricing.Settings, now time.Time) []Product {
	out := make([]Product, len(list))
	for i, p := range list {
		out[i] = Recalculate(p, s, now)
	}
	return out
}

// Find returns the product with the given id.
func Find(list []Product, id string) (Product, bool) {
	idx := slices.IndexFunc(list, func(p Product) bool { return p.ID == id })
	if idx < 0 {
		return Product{}, false
	}
	return list[idx], true
}

// Remove returns list without the product with the given id.
func Remove(list []Product, id string) ([]Product, error) {
	idx := slices.IndexFunc(list, func(p Product) bool { return p.ID == id })
	if idx < 0 {
		return list, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return slices.Delete(slices.Clone(list), idx, idx+1), nil
}
