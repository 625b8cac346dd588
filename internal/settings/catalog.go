package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/teekalk/internal/pricing"
)

// FixedCostPatch carries the fields to change on a fixed-cost item. Nil fields are kept.
type FixedCostPatch struct {
	Name        *string  `json:"name,omitempty"`
	MonthlyCost *float64 `json:"monthlyCost,omitempty"`
}

// ShippingOptionPatch carries the fields to change on a shipping option. Nil fields are kept.
type ShippingOptionPatch struct {
	Name      *string  `json:"name,omitempty"`
	MaxWeight *float64 `json:"maxWeight,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

// AddFixedCost appends a new item and recomputes the monthly total.
func AddFixedCost(s pricing.Settings, name string, monthlyCost float64) (pricing.Settings, pricing.FixedCostItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, pricing.FixedCostItem{}, fmt.Errorf("%w: fixed cost name is required", ErrInvalidValue)
	}
	if !nonNegative(monthlyCost) {
		return s, pricing.FixedCostItem{}, fmt.Errorf("%w: monthly cost must be >= 0", ErrInvalidValue)
	}

	item := pricing.FixedCostItem{ID: uuid.NewString(), Name: name, MonthlyCost: monthlyCost}
	s = clone(s)
	s.MonthlyFixedCosts = append(s.MonthlyFixedCosts, item)
	s.TotalMonthlyFixedCosts = TotalFixedCosts(s.MonthlyFixedCosts)
	return s, item, nil
}

// UpdateFixedCost changes one item and recomputes the monthly total.
func UpdateFixedCost(s pricing.Settings, id string, patch FixedCostPatch) (pricing.Settings, error) {
	idx := slices.IndexFunc(s.MonthlyFixedCosts, func(item pricing.FixedCostItem) bool { return item.ID == id })
	if idx < 0 {
		return s, fmt.Errorf("%w: fixed cost %q", ErrNotFound, id)
	}

	next := clone(s)
	item := &next.MonthlyFixedCosts[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return s, fmt.Errorf("%w: fixed cost name is required", ErrInvalidValue)
		}
		item.Name = name
	}
	if patch.MonthlyCost != nil {
		if !nonNegative(*patch.MonthlyCost) {
			return s, fmt.Errorf("%w: monthly cost must be >= 0", ErrInvalidValue)
		}
		item.MonthlyCost = *patch.MonthlyCost
	}
	next.TotalMonthlyFixedCosts = TotalFixedCosts(next.MonthlyFixedCosts)
	return next, nil
}

// RemoveFixedCost drops one item and recomputes the monthly total.
func RemoveFixedCost(s pricing.Settings, id string) (pricing.Settings, error) {
	idx := slices.IndexFunc(s.MonthlyFixedCosts, func(item pricing.FixedCostItem) bool { return item.ID == id })
	if idx < 0 {
		return s, fmt.Errorf("%w: fixed cost %q", ErrNotFound, id)
	}

	s = clone(s)
	s.MonthlyFixedCosts = slices.Delete(s.MonthlyFixedCosts, idx, idx+1)
	s.TotalMonthlyFixedCosts = TotalFixedCosts(s.MonthlyFixedCosts)
	return s, nil
}

// AddShippingOption appends a new catalog entry.
func AddShippingOption(s pricing.Settings, name string, maxWeight, price float64) (pricing.Settings, pricing.ShippingOption, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, pricing.ShippingOption{}, fmt.Errorf("%w: shipping option name is required", ErrInvalidValue)
	}
	if !nonNegative(maxWeight) || !nonNegative(price) {
		return s, pricing.ShippingOption{}, fmt.Errorf("%w: shipping weight and price must be >= 0", ErrInvalidValue)
	}

	option := pricing.ShippingOption{ID: uuid.NewString(), Name: name, MaxWeight: maxWeight, Price: price}
	s = clone(s)
	s.ShippingOptions = append(s.ShippingOptions, option)
	return s, option, nil
}

// UpdateShippingOption changes the fields set in patch on one catalog entry.
func UpdateShippingOption(s pricing.Settings, id string, patch ShippingOptionPatch) (pricing.Settings, error) {
	idx := slices.IndexFunc(s.ShippingOptions, func(o pricing.ShippingOption) bool { return o.ID == id })
	if idx < 0 {
		return s, fmt.Errorf("%w: shipping option %q", ErrNotFound, id)
	}

	next := clone(s)
	option := &next.ShippingOptions[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return s, fmt.Errorf("%w: shipping option name is required", ErrInvalidValue)
		}
		option.Name = name
	}
	if patch.MaxWeight != nil {
		if !nonNegative(*patch.MaxWeight) {
			return s, fmt.Errorf("%w: max weight must be >= 0", ErrInvalidValue)
		}
		option.MaxWeight = *patch.MaxWeight
	}
	if patch.Price != nil {
		if !nonNegative(*patch.Price) {
			return s, fmt.Errorf("%w: price must be >= 0", ErrInvalidValue)
		}
		option.Price = *patch.Price
	}
	return next, nil
}

// RemoveShippingOption drops a catalog entry. The selected default shipping cost is left as is.
func RemoveShippingOption(s pricing.Settings, id string) (pricing.Settings, error) {
	idx := slices.IndexFunc(s.ShippingOptions, func(o pricing.ShippingOption) bool { return o.ID == id })
	if idx < 0 {
		return s, fmt.Errorf("%w: shipping option %q", ErrNotFound, id)
	}

	s = clone(s)
	s.ShippingOptions = slices.Delete(s.ShippingOptions, idx, idx+1)
	return s, nil
}
