package pricing

// production holds the steps both calculation modes share.
type production struct {
	rawMaterialCost     float64
	packagingCost       float64
	fixedCostAllocation float64
	totalProductionCost float64
	shippingCost        float64
	provider            PaymentProviderConfig
	breakEvenPrice      float64
}

func productionCosts(ingredients []Ingredient, packaging Packaging, weightGrams float64, settings Settings) production {
	rawMaterialCost := RawMaterialCost(ingredients, weightGrams)
	packagingCost := PackagingCost(packaging)
	fixedCostAllocation := FixedCostAllocation(settings.TotalMonthlyFixedCosts, settings.ExpectedMonthlySales)
	total := rawMaterialCost + packagingCost + fixedCostAllocation

	shippingCost := settings.DefaultShippingCost
	provider := settings.Provider()

	return production{
		rawMaterialCost:     rawMaterialCost,
		packagingCost:       packagingCost,
		fixedCostAllocation: fixedCostAllocation,
		totalProductionCost: total,
		shippingCost:        shippingCost,
		provider:            provider,
		breakEvenPrice:      BreakEvenPrice(total, shippingCost, provider.FeePercent, provider.FeeFixed),
	}
}

func (p production) costs(transactionFee, vatAmount, sellingPriceBrutto float64) CalculatedCosts {
	profit := Profit(sellingPriceBrutto, p.totalProductionCost, p.shippingCost, transactionFee, vatAmount)

	return CalculatedCosts{
		RawMaterialCost:     p.rawMaterialCost,
		PackagingCost:       p.packagingCost,
		FixedCostAllocation: p.fixedCostAllocation,
		TotalProductionCost: p.totalProductionCost,
		ShippingCost:        p.shippingCost,
		TransactionFee:      transactionFee,
		VATAmount:           vatAmount,
		BreakEvenPrice:      p.breakEvenPrice,
		ProfitPerUnit:       profit,
		ActualMargin:        ActualMargin(profit, sellingPriceBrutto),
	}
}

// CalculateAllCosts prices a product for a target margin. The selling price is
// derived from the break-even price; fee and VAT are computed from that price.
func CalculateAllCosts(ingredients []Ingredient, packaging Packaging, weightGrams, targetMargin float64, settings Settings) CalculatedCosts {
	p := productionCosts(ingredients, packaging, weightGrams, settings)

	price := SellingPrice(p.breakEvenPrice, targetMargin, settings.VATRate)
	transactionFee := TransactionFee(price.Brutto, p.provider)
	vatAmount := VAT(price.Netto, settings.VATRate)

	return p.costs(transactionFee, vatAmount, price.Brutto)
}

// RecommendedPrice returns the price CalculateAllCosts derives for targetMargin.
func RecommendedPrice(ingredients []Ingredient, packaging Packaging, weightGrams, targetMargin float64, settings Settings) Price {
	p := productionCosts(ingredients, packaging, weightGrams, settings)
	return SellingPrice(p.breakEvenPrice, targetMargin, settings.VATRate)
}

// CalculateCostsFromPrice evaluates a given gross selling price. The break-even
// price is reported for comparison only.
func CalculateCostsFromPrice(ingredients []Ingredient, packaging Packaging, weightGrams, sellingPriceBrutto float64, settings Settings) CalculatedCosts {
	p := productionCosts(ingredients, packaging, weightGrams, settings)

	transactionFee := TransactionFee(sellingPriceBrutto, p.provider)
	_, vatAmount := NetFromGross(sellingPriceBrutto, settings.VATRate)

	return p.costs(transactionFee, vatAmount, sellingPriceBrutto)
}
