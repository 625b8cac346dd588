package products

import (
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/teekalk/internal/pricing"
)

// Patch holds the fields to change on a product. Nil fields are kept. As with a
// Draft, a SellingPriceBrutto of 0 means the price is derived from the target margin.
type Patch struct {
	Name               *string               `json:"name,omitempty"`
	SKU                *string               `json:"sku,omitempty"`
	Category           *Category             `json:"category,omitempty"`
	WeightGrams        *float64              `json:"weightGrams,omitempty"`
	Ingredients        *[]pricing.Ingredient `json:"ingredients,omitempty"`
	Packaging          *pricing.Packaging    `json:"packaging,omitempty"`
	TargetMargin       *float64              `json:"targetMargin,omitempty"`
	SellingPriceBrutto *float64              `json:"sellingPriceBrutto,omitempty"`
}

func (pt Patch) repricing() bool {
	return pt.WeightGrams != nil || pt.Ingredients != nil || pt.Packaging != nil || pt.SellingPriceBrutto != nil
}

func (pt Patch) validate() error {
	if pt.Name != nil && strings.TrimSpace(*pt.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if pt.Category != nil && !pt.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, *pt.Category)
	}
	if pt.WeightGrams != nil && (!(*pt.WeightGrams > 0) || !pricing.Finite(*pt.WeightGrams)) {
		return fmt.Errorf("%w: weightGrams must be > 0", ErrInvalid)
	}
	if pt.Ingredients != nil {
		if err := validateIngredients(*pt.Ingredients); err != nil {
			return err
		}
	}
	if pt.Packaging != nil {
		if err := validatePackaging(*pt.Packaging); err != nil {
			return err
		}
	}
	if pt.TargetMargin != nil && !validMargin(*pt.TargetMargin) {
		return fmt.Errorf("%w: targetMargin must be in [0, 1)", ErrInvalid)
	}
	if pt.SellingPriceBrutto != nil && !nonNegative(*pt.SellingPriceBrutto) {
		return fmt.Errorf("%w: sellingPriceBrutto must be >= 0", ErrInvalid)
	}
	return nil
}

// Apply returns p with the patch applied. The calculation is redone when a
// composition field or the price changes; UpdatedAt is always bumped.
func Apply(p Product, pt Patch, s pricing.Settings, now time.Time) (Product, error) {
	if err := pt.validate(); err != nil {
		return p, err
	}
	orig := p

	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.SKU != nil {
		p.SKU = strings.TrimSpace(*pt.SKU)
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.WeightGrams != nil {
		p.WeightGrams = *pt.WeightGrams
	}
	if pt.Ingredients != nil {
		p.Ingredients = withIngredientIDs(*pt.Ingredients)
	}
	if pt.Packaging != nil {
		p.Packaging = *pt.Packaging
	}
	if pt.TargetMargin != nil {
		p.TargetMargin = *pt.TargetMargin
	}
	if pt.SellingPriceBrutto != nil {
		p.SellingPriceBrutto = *pt.SellingPriceBrutto
		if p.SellingPriceBrutto == 0 {
			p.SellingPriceBrutto = RecommendedPrice(p, s).Brutto
		}
	}

	if pt.repricing() {
		p.CalculatedCosts = calculate(p, s)
		if err := checkPriced(p); err != nil {
			return orig, err
		}
	}
	p.UpdatedAt = now
	return p, nil
}
