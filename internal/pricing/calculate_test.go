package pricing

import (
	"math"
	"testing"
)

func TestCalculateCostsFromPrice_Scenario(t *testing.T) {
	ingredients := []Ingredient{{PercentageOfBlend: 100, PricePerKg: 20}}
	packaging := Packaging{BagCost: 0.18, LabelCost: 0.12}

	costs := CalculateCostsFromPrice(ingredients, packaging, 100, 19.90, testSettings())

	netto := 19.90 / 1.07
	nearlyEqual(t, "rawMaterialCost", costs.RawMaterialCost, 2)
	nearlyEqual(t, "packagingCost", costs.PackagingCost, 0.30)
	nearlyEqual(t, "fixedCostAllocation", costs.FixedCostAllocation, 0.55)
	nearlyEqual(t, "totalProductionCost", costs.TotalProductionCost, 2.85)
	nearlyEqual(t, "shippingCost", costs.ShippingCost, 3.99)
	nearlyEqual(t, "transactionFee", costs.TransactionFee, 0.5485)
	nearlyEqual(t, "vatAmount", costs.VATAmount, 19.90-netto)
	nearlyEqual(t, "breakEvenPrice", costs.BreakEvenPrice, (2.85+3.99+0.25)/0.985)

	profit := 19.90 - 2.85 - 3.99 - 0.5485 - (19.90 - netto)
	nearlyEqual(t, "profitPerUnit", costs.ProfitPerUnit, profit)
	nearlyEqual(t, "actualMargin", costs.ActualMargin, profit/19.90)
}

func TestCalculateCostsFromPrice_ZeroPrice(t *testing.T) {
	ingredients, packaging := testBlend()
	costs := CalculateCostsFromPrice(ingredients, packaging, 100, 0, testSettings())

	nearlyEqual(t, "actualMargin", costs.ActualMargin, 0)
	nearlyEqual(t, "transactionFee", costs.TransactionFee, 0.25)
	nearlyEqual(t, "vatAmount", costs.VATAmount, 0)
	if costs.ProfitPerUnit >= 0 {
		t.Fatalf("profitPerUnit = %v, want negative", costs.ProfitPerUnit)
	}
}

func TestCalculateCostsFromPrice_ZeroSales(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()
	s.ExpectedMonthlySales = 0

	costs := CalculateCostsFromPrice(ingredients, packaging, 100, 12.5, s)
	nearlyEqual(t, "fixedCostAllocation", costs.FixedCostAllocation, 0)
	nearlyEqual(t, "totalProductionCost", costs.TotalProductionCost, costs.RawMaterialCost+costs.PackagingCost)
}

func TestCalculateAllCosts_DerivesPriceFromMargin(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()

	costs := CalculateAllCosts(ingredients, packaging, 100, 0.5, s)

	// raw = 0.1*0.7*24 + 0.1*0.3*40 = 1.68 + 1.2
	nearlyEqual(t, "rawMaterialCost", costs.RawMaterialCost, 2.88)
	production := 2.88 + 0.30 + 0.55
	nearlyEqual(t, "totalProductionCost", costs.TotalProductionCost, production)

	breakEven := (production + 3.99 + 0.25) / 0.985
	nearlyEqual(t, "breakEvenPrice", costs.BreakEvenPrice, breakEven)

	netto := breakEven / 0.5
	brutto := netto * 1.07
	nearlyEqual(t, "transactionFee", costs.TransactionFee, brutto*0.015+0.25)
	nearlyEqual(t, "vatAmount", costs.VATAmount, netto*0.07)

	profit := brutto - production - 3.99 - (brutto*0.015 + 0.25) - netto*0.07
	nearlyEqual(t, "profitPerUnit", costs.ProfitPerUnit, profit)
	nearlyEqual(t, "actualMargin", costs.ActualMargin, profit/brutto)
}

func TestRecommendedPrice_MatchesCalculateAllCosts(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()

	price := RecommendedPrice(ingredients, packaging, 250, 0.4, s)
	costs := CalculateAllCosts(ingredients, packaging, 250, 0.4, s)

	gross := costs.ProfitPerUnit + costs.TotalProductionCost + costs.ShippingCost + costs.TransactionFee + costs.VATAmount
	nearlyEqual(t, "brutto", price.Brutto, gross)
	nearlyEqual(t, "netto", price.Netto, costs.BreakEvenPrice/0.6)
}

func TestModes_RoundTrip(t *testing.T) {
	ingredients, packaging := testBlend()

	for _, provider := range []string{"stripe", "paypal"} {
		for _, margin := range []float64{0, 0.1, 0.35, 0.5, 0.8} {
			s := testSettings()
			s.PaymentProvider = provider

			forward := CalculateAllCosts(ingredients, packaging, 100, margin, s)
			price := RecommendedPrice(ingredients, packaging, 100, margin, s)
			inverse := CalculateCostsFromPrice(ingredients, packaging, 100, price.Brutto, s)

			if math.Abs(forward.ActualMargin-inverse.ActualMargin) > 1e-9 {
				t.Fatalf("%s margin %v: forward %v, inverse %v", provider, margin, forward.ActualMargin, inverse.ActualMargin)
			}
			nearlyEqual(t, "vatAmount", inverse.VATAmount, forward.VATAmount)
			nearlyEqual(t, "transactionFee", inverse.TransactionFee, forward.TransactionFee)
			nearlyEqual(t, "breakEvenPrice", inverse.BreakEvenPrice, forward.BreakEvenPrice)
		}
	}
}

func TestModes_Deterministic(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()

	a1 := CalculateAllCosts(ingredients, packaging, 100, 0.45, s)
	a2 := CalculateAllCosts(ingredients, packaging, 100, 0.45, s)
	if a1 != a2 {
		t.Fatalf("CalculateAllCosts not deterministic: %+v vs %+v", a1, a2)
	}

	b1 := CalculateCostsFromPrice(ingredients, packaging, 100, 14.9, s)
	b2 := CalculateCostsFromPrice(ingredients, packaging, 100, 14.9, s)
	if b1 != b2 {
		t.Fatalf("CalculateCostsFromPrice not deterministic: %+v vs %+v", b1, b2)
	}
}

func TestCalculateCostsFromPrice_UnknownProviderUsesFirst(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()
	s.PaymentProvider = "klarna"

	costs := CalculateCostsFromPrice(ingredients, packaging, 100, 10, s)
	nearlyEqual(t, "transactionFee", costs.TransactionFee, 10*0.015+0.25)
}

func TestCalculateAllCosts_HitsTargetWithoutPercentFeeAndVAT(t *testing.T) {
	ingredients, packaging := testBlend()
	s := testSettings()
	s.PaymentProviders = []PaymentProviderConfig{{ID: "cash", FeeFixed: 0.1}}
	s.VATRate = 0

	for _, margin := range []float64{0, 0.25, 0.6} {
		costs := CalculateAllCosts(ingredients, packaging, 100, margin, s)
		nearlyEqual(t, "actualMargin", costs.ActualMargin, margin)
	}
}
