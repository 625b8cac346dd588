package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/settings"
	"github.com/Simplici0/teekalk/internal/tracker"
)

func compositionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "ingredient",
			Aliases:  []string{"i"},
			Usage:    "Blend component as name:percent:pricePerKg (repeatable)",
			Required: true,
		},
		&cli.Float64Flag{Name: "weight", Aliases: []string{"w"}, Usage: "Product weight in grams", Required: true},
		&cli.Float64Flag{Name: "bag", Usage: "Bag cost per unit"},
		&cli.Float64Flag{Name: "label", Usage: "Label cost per unit"},
		&cli.Float64Flag{Name: "box", Usage: "Box cost per unit"},
		&cli.Float64Flag{Name: "shipping", Usage: "Override the default shipping cost"},
		&cli.StringFlag{Name: "provider", Usage: "Override the payment provider (stripe, paypal, klarna)"},
		&cli.Float64Flag{Name: "fixed", Usage: "Override the total monthly fixed costs"},
		&cli.Float64Flag{Name: "sales", Usage: "Override the expected monthly sales"},
		&cli.Float64Flag{Name: "vat", Usage: "Override the VAT rate as a fraction, e.g. 0.07"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format (text, json)"},
	}
}

func priceCommand() *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "Derive the selling price for a target margin",
		Flags: append(compositionFlags(),
			&cli.Float64Flag{Name: "margin", Aliases: []string{"m"}, Value: 0.5, Usage: "Target margin as a fraction of the gross price"},
		),
		Action: func(c *cli.Context) error {
			composition, s, err := calculationInput(c)
			if err != nil {
				return err
			}
			margin := c.Float64("margin")
			if !(margin >= 0 && margin < 1) {
				return fmt.Errorf("--margin must be in [0, 1), got %v", margin)
			}

			price := pricing.RecommendedPrice(composition.Ingredients, composition.Packaging, composition.WeightGrams, margin, s)
			return writeQuote(c, tracker.Quote{
				SellingPriceBrutto: price.Brutto,
				SellingPriceNetto:  price.Netto,
				Costs:              pricing.CalculateAllCosts(composition.Ingredients, composition.Packaging, composition.WeightGrams, margin, s),
			})
		},
	}
}

func marginCommand() *cli.Command {
	return &cli.Command{
		Name:  "margin",
		Usage: "Evaluate the margin at a given gross selling price",
		Flags: append(compositionFlags(),
			&cli.Float64Flag{Name: "price", Aliases: []string{"p"}, Usage: "Gross selling price", Required: true},
		),
		Action: func(c *cli.Context) error {
			composition, s, err := calculationInput(c)
			if err != nil {
				return err
			}
			brutto := c.Float64("price")
			if !nonNegative(brutto) {
				return fmt.Errorf("--price must be a finite number >= 0, got %v", brutto)
			}

			netto, _ := pricing.NetFromGross(brutto, s.VATRate)
			return writeQuote(c, tracker.Quote{
				SellingPriceBrutto: brutto,
				SellingPriceNetto:  netto,
				Costs:              pricing.CalculateCostsFromPrice(composition.Ingredients, composition.Packaging, composition.WeightGrams, brutto, s),
			})
		},
	}
}

func calculationInput(c *cli.Context) (tracker.Composition, pricing.Settings, error) {
	var ingredients []pricing.Ingredient
	for _, raw := range c.StringSlice("ingredient") {
		ing, err := parseIngredient(raw)
		if err != nil {
			return tracker.Composition{}, pricing.Settings{}, err
		}
		ingredients = append(ingredients, ing)
	}

	weight := c.Float64("weight")
	if !(weight > 0) || !pricing.Finite(weight) {
		return tracker.Composition{}, pricing.Settings{}, fmt.Errorf("--weight must be > 0, got %v", weight)
	}

	packaging := pricing.Packaging{BagCost: c.Float64("bag"), LabelCost: c.Float64("label"), BoxCost: c.Float64("box")}
	if !nonNegative(packaging.BagCost) || !nonNegative(packaging.LabelCost) || !nonNegative(packaging.BoxCost) {
		return tracker.Composition{}, pricing.Settings{}, fmt.Errorf("packaging costs must be finite and >= 0")
	}

	s, err := overrideSettings(c, settings.Default())
	if err != nil {
		return tracker.Composition{}, pricing.Settings{}, err
	}

	return tracker.Composition{WeightGrams: weight, Ingredients: ingredients, Packaging: packaging}, s, nil
}

// parseIngredient reads "name:percent:pricePerKg". The name may itself contain colons.
func parseIngredient(raw string) (pricing.Ingredient, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 {
		return pricing.Ingredient{}, fmt.Errorf("ingredient %q: want name:percent:pricePerKg", raw)
	}

	n := len(parts)
	name := strings.TrimSpace(strings.Join(parts[:n-2], ":"))
	if name == "" {
		return pricing.Ingredient{}, fmt.Errorf("ingredient %q: name is required", raw)
	}
	percent, err := parseNumber(parts[n-2])
	if err != nil || percent < 0 || percent > 100 {
		return pricing.Ingredient{}, fmt.Errorf("ingredient %q: percent must be a number in [0, 100]", raw)
	}
	pricePerKg, err := parseNumber(parts[n-1])
	if err != nil || pricePerKg < 0 {
		return pricing.Ingredient{}, fmt.Errorf("ingredient %q: pricePerKg must be a number >= 0", raw)
	}

	return pricing.Ingredient{Name: name, PercentageOfBlend: percent, PricePerKg: pricePerKg}, nil
}

// parseNumber accepts a decimal comma as well as a decimal point. NaN and ±Inf are rejected.
func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if !pricing.Finite(v) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

func nonNegative(v float64) bool {
	return v >= 0 && pricing.Finite(v)
}

func overrideSettings(c *cli.Context, s pricing.Settings) (pricing.Settings, error) {
	var err error
	if c.IsSet("shipping") {
		if s, err = settings.WithDefaultShippingCost(s, c.Float64("shipping")); err != nil {
			return s, err
		}
	}
	if c.IsSet("provider") {
		if s, err = settings.WithPaymentProvider(s, c.String("provider")); err != nil {
			return s, err
		}
	}
	if c.IsSet("sales") {
		if s, err = settings.WithExpectedMonthlySales(s, c.Float64("sales")); err != nil {
			return s, err
		}
	}
	if c.IsSet("fixed") {
		s.MonthlyFixedCosts = []pricing.FixedCostItem{{ID: "cli", Name: "Fixkosten", MonthlyCost: c.Float64("fixed")}}
	}
	if c.IsSet("vat") {
		s.VATRate = c.Float64("vat")
	}

	s = settings.Normalize(s)
	return s, settings.Validate(s)
}

func writeQuote(c *cli.Context, q tracker.Quote) error {
	if !pricing.Finite(q.SellingPriceBrutto, q.SellingPriceNetto) || !q.Costs.Finite() {
		return fmt.Errorf("calculation overflows for these inputs")
	}
	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	case "text":
		return writeQuoteText(c.App.Writer, q)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

func writeQuoteText(w io.Writer, q tracker.Quote) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value float64
	}{
		{"Rohstoffkosten", q.Costs.RawMaterialCost},
		{"Verpackungskosten", q.Costs.PackagingCost},
		{"Fixkosten-Umlage", q.Costs.FixedCostAllocation},
		{"Produktionskosten", q.Costs.TotalProductionCost},
		{"Versandkosten", q.Costs.ShippingCost},
		{"Transaktionsgebühr", q.Costs.TransactionFee},
		{"MwSt", q.Costs.VATAmount},
		{"Break-Even", q.Costs.BreakEvenPrice},
		{"VK Netto", q.SellingPriceNetto},
		{"VK Brutto", q.SellingPriceBrutto},
		{"Gewinn", q.Costs.ProfitPerUnit},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.2f €\t\n", row.label, row.value)
	}
	fmt.Fprintf(tw, "Marge\t%.1f %%\t\n", q.Costs.ActualMargin*100)
	return tw.Flush()
}
