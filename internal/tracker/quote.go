package tracker

import (
	"context"
	"fmt"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/products"
)

// Composition is the product input of a stateless calculation.
type Composition struct {
	WeightGrams float64              `json:"weightGrams"`
	Ingredients []pricing.Ingredient `json:"ingredients"`
	Packaging   pricing.Packaging    `json:"packaging"`
}

// Quote is a calculation result together with the gross price it was evaluated at.
type Quote struct {
	SellingPriceBrutto float64                 `json:"sellingPriceBrutto"`
	SellingPriceNetto  float64                 `json:"sellingPriceNetto"`
	Costs              pricing.CalculatedCosts `json:"calculatedCosts"`
}

func (c Composition) validate() error {
	d := products.Draft{
		Name:        "quote",
		Category:    products.CategoryBlackTea,
		WeightGrams: c.WeightGrams,
		Ingredients: c.Ingredients,
		Packaging:   c.Packaging,
	}
	return d.Validate()
}

// QuoteForMargin prices a composition for a target margin under the stored settings.
func (s *Service) QuoteForMargin(ctx context.Context, c Composition, targetMargin float64) (Quote, error) {
	if err := c.validate(); err != nil {
		return Quote{}, err
	}
	if !(targetMargin >= 0 && targetMargin < 1) {
		return Quote{}, fmt.Errorf("%w: targetMargin must be in [0, 1)", products.ErrInvalid)
	}

	current, err := s.Settings(ctx)
	if err != nil {
		return Quote{}, err
	}

	price := pricing.RecommendedPrice(c.Ingredients, c.Packaging, c.WeightGrams, targetMargin, current)
	return checkQuote(Quote{
		SellingPriceBrutto: price.Brutto,
		SellingPriceNetto:  price.Netto,
		Costs:              pricing.CalculateAllCosts(c.Ingredients, c.Packaging, c.WeightGrams, targetMargin, current),
	})
}

// QuoteForPrice evaluates a composition at a given gross price under the stored settings.
func (s *Service) QuoteForPrice(ctx context.Context, c Composition, sellingPriceBrutto float64) (Quote, error) {
	if err := c.validate(); err != nil {
		return Quote{}, err
	}
	if !(sellingPriceBrutto >= 0) || !pricing.Finite(sellingPriceBrutto) {
		return Quote{}, fmt.Errorf("%w: sellingPriceBrutto must be >= 0", products.ErrInvalid)
	}

	current, err := s.Settings(ctx)
	if err != nil {
		return Quote{}, err
	}

	netto, _ := pricing.NetFromGross(sellingPriceBrutto, current.VATRate)
	return checkQuote(Quote{
		SellingPriceBrutto: sellingPriceBrutto,
		SellingPriceNetto:  netto,
		Costs:              pricing.CalculateCostsFromPrice(c.Ingredients, c.Packaging, c.WeightGrams, sellingPriceBrutto, current),
	})
}

func checkQuote(q Quote) (Quote, error) {
	if !pricing.Finite(q.SellingPriceBrutto, q.SellingPriceNetto) || !q.Costs.Finite() {
		return Quote{}, fmt.Errorf("%w: calculation overflows for these inputs", products.ErrInvalid)
	}
	return q, nil
}

// Recommendation is the price that reaches a product's target margin, with the
// breakdown at that price.
type Recommendation struct {
	TargetMargin     float64                 `json:"targetMargin"`
	RecommendedPrice pricing.Price           `json:"recommendedPrice"`
	Costs            pricing.CalculatedCosts `json:"calculatedCosts"`
}

// Recommendation evaluates the stored product with the given id at its target margin.
func (s *Service) Recommendation(ctx context.Context, id string) (Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Settings(ctx)
	if err != nil {
		return Recommendation{}, err
	}
	list, err := s.repo.Products(ctx)
	if err != nil {
		return Recommendation{}, err
	}
	p, ok := products.Find(list, id)
	if !ok {
		return Recommendation{}, fmt.Errorf("%w: %s", products.ErrNotFound, id)
	}

	return Recommendation{
		TargetMargin:     p.TargetMargin,
		RecommendedPrice: products.RecommendedPrice(p, current),
		Costs:            products.TargetCosts(p, current),
	}, nil
}
