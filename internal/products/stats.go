package products

import "github.com/Simplici0/teekalk/internal/pricing"

const (
	problemMarginBelow = 0.3
	bestMarginFrom     = 0.5
)

// Stats are the dashboard figures over all products.
type Stats struct {
	TotalProducts       int       `json:"totalProducts"`
	AverageMargin       float64   `json:"averageMargin"`
	TotalMonthlyRevenue float64   `json:"totalMonthlyRevenue"`
	TotalMonthlyProfit  float64   `json:"totalMonthlyProfit"`
	ProblemProducts     []Product `json:"problemProducts"`
	BestProducts        []Product `json:"bestProducts"`
}

// ComputeStats assumes the expected monthly sales are spread evenly over all products.
func ComputeStats(list []Product, s pricing.Settings) Stats {
	stats := Stats{
		TotalProducts:   len(list),
		ProblemProducts: make([]Product, 0),
		BestProducts:    make([]Product, 0),
	}

	var marginSum, revenueSum, profitSum float64
	for _, p := range list {
		margin := p.CalculatedCosts.ActualMargin
		marginSum += margin
		revenueSum += p.SellingPriceBrutto
		profitSum += p.CalculatedCosts.ProfitPerUnit

		if margin < problemMarginBelow {
			stats.ProblemProducts = append(stats.ProblemProducts, p)
		}
		if margin >= bestMarginFrom {
			stats.BestProducts = append(stats.BestProducts, p)
		}
	}

	if len(list) > 0 {
		stats.AverageMargin = marginSum / float64(len(list))
	}

	unitsPerProduct := s.ExpectedMonthlySales / float64(max(len(list), 1))
	stats.TotalMonthlyRevenue = revenueSum * unitsPerProduct
	stats.TotalMonthlyProfit = profitSum * unitsPerProduct
	return stats
}
