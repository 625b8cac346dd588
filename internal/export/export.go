// Package export writes product calculations as semicolon-separated text or as
// an Excel workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/teekalk/internal/products"
)

// Header is the fixed column layout of every export.
var Header = []string{
	"Name",
	"SKU",
	"Kategorie",
	"Gewicht (g)",
	"Rohstoffkosten",
	"Verpackungskosten",
	"Fixkosten-Umlage",
	"Produktionskosten",
	"Versandkosten",
	"Transaktionsgebühr",
	"MwSt",
	"Break-Even",
	"VK Brutto",
	"Gewinn",
	"Marge",
}

// FileName returns the download name for an export created at now.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("tee-kalkulation-%s.%s", now.Format(time.DateOnly), ext)
}

// Select returns the products whose ids are listed, in their original order.
// An empty id list selects everything.
func Select(list []products.Product, ids []string) []products.Product {
	if len(ids) == 0 {
		return list
	}
	out := make([]products.Product, 0, len(ids))
	for _, p := range list {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Row formats one product into the export columns.
func Row(p products.Product) []string {
	c := p.CalculatedCosts
	return []string{
		p.Name,
		p.SKU,
		string(p.Category),
		strconv.FormatFloat(p.WeightGrams, 'f', -1, 64),
		money(c.RawMaterialCost),
		money(c.PackagingCost),
		money(c.FixedCostAllocation),
		money(c.TotalProductionCost),
		money(c.ShippingCost),
		money(c.TransactionFee),
		money(c.VATAmount),
		money(c.BreakEvenPrice),
		money(p.SellingPriceBrutto),
		money(c.ProfitPerUnit),
		percent(c.ActualMargin),
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(1) + "%"
}

// WriteCSV writes the header and one line per product, separated by semicolons.
func WriteCSV(w io.Writer, list []products.Product) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range list {
		if err := cw.Write(Row(p)); err != nil {
			return fmt.Errorf("write csv row for %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
