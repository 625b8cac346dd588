package pricing

import "math"

// Ingredient is one component of a tea blend.
type Ingredient struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	PercentageOfBlend float64 `json:"percentageOfBlend"`
	PricePerKg        float64 `json:"pricePerKg"`
}

// Packaging holds the per-unit packaging costs. BoxCost is zero when no box is used.
type Packaging struct {
	BagCost   float64 `json:"bagCost"`
	LabelCost float64 `json:"labelCost"`
	BoxCost   float64 `json:"boxCost"`
}

// PaymentProviderConfig describes the fee model of a payment processor.
type PaymentProviderConfig struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FeePercent float64 `json:"feePercent"`
	FeeFixed   float64 `json:"feeFixed"`
}

// FixedCostItem is a recurring monthly cost shared by all products.
type FixedCostItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MonthlyCost float64 `json:"monthlyCost"`
}

// ShippingOption is a catalog entry. MaxWeight (kg) is informational only.
type ShippingOption struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MaxWeight float64 `json:"maxWeight"`
	Price     float64 `json:"price"`
}

// Settings is the global snapshot every calculation is evaluated against.
// TotalMonthlyFixedCosts must be kept in sync with MonthlyFixedCosts by the caller.
type Settings struct {
	DefaultShippingCost float64          `json:"defaultShippingCost"`
	ShippingOptions     []ShippingOption `json:"shippingOptions"`

	PaymentProvider  string                  `json:"paymentProvider"`
	PaymentProviders []PaymentProviderConfig `json:"paymentProviders"`

	MonthlyFixedCosts      []FixedCostItem `json:"monthlyFixedCosts"`
	TotalMonthlyFixedCosts float64         `json:"totalMonthlyFixedCosts"`
	ExpectedMonthlySales   float64         `json:"expectedMonthlySales"`

	VATRate float64 `json:"vatRate"`
}

// Provider returns the selected payment provider, falling back to the first
// catalog entry when the id is unknown. An empty catalog yields the zero value.
func (s Settings) Provider() PaymentProviderConfig {
	for _, p := range s.PaymentProviders {
		if p.ID == s.PaymentProvider {
			return p
		}
	}
	if len(s.PaymentProviders) > 0 {
		return s.PaymentProviders[0]
	}
	return PaymentProviderConfig{}
}

// CalculatedCosts is the full per-unit breakdown of one calculation.
type CalculatedCosts struct {
	RawMaterialCost     float64 `json:"rawMaterialCost"`
	PackagingCost       float64 `json:"packagingCost"`
	FixedCostAllocation float64 `json:"fixedCostAllocation"`
	TotalProductionCost float64 `json:"totalProductionCost"`
	ShippingCost        float64 `json:"shippingCost"`
	TransactionFee      float64 `json:"transactionFee"`
	VATAmount           float64 `json:"vatAmount"`
	BreakEvenPrice      float64 `json:"breakEvenPrice"`
	ProfitPerUnit       float64 `json:"profitPerUnit"`
	ActualMargin        float64 `json:"actualMargin"`
}

// Finite reports whether every field is a finite number. Extreme inputs, such as a
// vanishingly small sales volume, can overflow the divisions to ±Inf.
func (c CalculatedCosts) Finite() bool {
	return Finite(c.RawMaterialCost, c.PackagingCost, c.FixedCostAllocation, c.TotalProductionCost,
		c.ShippingCost, c.TransactionFee, c.VATAmount, c.BreakEvenPrice, c.ProfitPerUnit, c.ActualMargin)
}

// Finite reports whether none of values is NaN or ±Inf.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Price is a selling price split into its net and gross parts.
type Price struct {
	Netto  float64 `json:"netto"`
	Brutto float64 `json:"brutto"`
}

// RawMaterialCost returns the ingredient cost of one unit of weightGrams.
// Percentages are not normalized: a blend summing to 80% costs 80% of the nominal weight.
func RawMaterialCost(ingredients []Ingredient, weightGrams float64) float64 {
	weightKg := weightGrams / 1000.0

	total := 0.0
	for _, ing := range ingredients {
		ingredientWeight := weightKg * (ing.PercentageOfBlend / 100.0)
		total += ingredientWeight * ing.PricePerKg
	}
	return total
}

// PackagingCost sums bag, label and box cost.
func PackagingCost(p Packaging) float64 {
	return p.BagCost + p.LabelCost + p.BoxCost
}

// FixedCostAllocation spreads the monthly fixed costs over the expected unit sales.
func FixedCostAllocation(totalMonthlyFixedCosts, expectedMonthlySales float64) float64 {
	if expectedMonthlySales <= 0 {
		return 0
	}
	return totalMonthlyFixedCosts / expectedMonthlySales
}

// TransactionFee is the processor fee charged on a gross selling price.
func TransactionFee(sellingPrice float64, provider PaymentProviderConfig) float64 {
	return sellingPrice*provider.FeePercent/100.0 + provider.FeeFixed
}

// VAT returns the tax amount for a net price.
func VAT(netto, vatRate float64) float64 {
	return netto * vatRate
}

// NetFromGross splits a gross price into its net part and the contained VAT.
func NetFromGross(brutto, vatRate float64) (netto, vatAmount float64) {
	netto = brutto / (1 + vatRate)
	return netto, brutto - netto
}

// BreakEvenPrice is the net price that covers production, shipping and the fixed
// part of the transaction fee. It divides by (1 - feePercent) but does not account
// for VAT, so it is a cost floor rather than an exact zero-profit price.
func BreakEvenPrice(productionCost, shippingCost, feePercent, feeFixed float64) float64 {
	return (productionCost + shippingCost + feeFixed) / (1 - feePercent/100.0)
}

// SellingPrice derives net and gross price from a break-even price and a target margin.
func SellingPrice(breakEvenPrice, targetMargin, vatRate float64) Price {
	netto := breakEvenPrice / (1 - targetMargin)
	return Price{Netto: netto, Brutto: netto * (1 + vatRate)}
}

// Profit is what remains of the gross price after costs, fee and VAT.
func Profit(sellingPriceBrutto, productionCost, shippingCost, transactionFee, vatAmount float64) float64 {
	return sellingPriceBrutto - productionCost - shippingCost - transactionFee - vatAmount
}

// ActualMargin is profit relative to the gross price, zero for non-positive prices.
func ActualMargin(profit, sellingPriceBrutto float64) float64 {
	if sellingPriceBrutto <= 0 {
		return 0
	}
	return profit / sellingPriceBrutto
}
