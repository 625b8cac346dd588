package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/products"
	"github.com/Simplici0/teekalk/internal/store"
	"github.com/Simplici0/teekalk/internal/tracker"
)

const earlGreyJSON = `{
	"name": "Earl Grey",
	"sku": "EG-100",
	"category": "schwarztee",
	"weightGrams": 100,
	"ingredients": [{"name": "Assam", "percentageOfBlend": 100, "pricePerKg": 20}],
	"packaging": {"bagCost": 0.18, "labelCost": 0.12},
	"targetMargin": 0.5,
	"sellingPriceBrutto": 19.90
}`

func newTestServer(t *testing.T) *server {
	t.Helper()

	repo := store.NewRepository(store.NewMemoryStore())
	srv := newServer(tracker.NewService(repo, zap.NewNop()), zap.NewNop())
	srv.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return srv
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func createProduct(t *testing.T, h http.Handler) products.Product {
	t.Helper()

	rr := do(t, h, http.MethodPost, "/api/products", earlGreyJSON)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[products.Product](t, rr)
}

func TestProductLifecycle(t *testing.T) {
	h := newTestServer(t).routes()

	p := createProduct(t, h)
	if p.ID == "" {
		t.Fatalf("expected product id")
	}
	if p.CalculatedCosts.ShippingCost != 3.99 {
		t.Fatalf("expected shipping cost 3.99, got %.2f", p.CalculatedCosts.ShippingCost)
	}

	rr := do(t, h, http.MethodPatch, "/api/products/"+p.ID, `{"sellingPriceBrutto": 24.90}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	updated := decode[products.Product](t, rr)
	if updated.CalculatedCosts.ActualMargin <= p.CalculatedCosts.ActualMargin {
		t.Fatalf("expected higher margin after price increase, got %v <= %v", updated.CalculatedCosts.ActualMargin, p.CalculatedCosts.ActualMargin)
	}

	list := decode[[]products.Product](t, do(t, h, http.MethodGet, "/api/products", ""))
	if len(list) != 1 || list[0].SellingPriceBrutto != 24.90 {
		t.Fatalf("unexpected product list: %+v", list)
	}

	if rr := do(t, h, http.MethodDelete, "/api/products/"+p.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/products/"+p.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCreateProductRejectsInvalidInput(t *testing.T) {
	h := newTestServer(t).routes()

	invalid := strings.Replace(earlGreyJSON, `"weightGrams": 100`, `"weightGrams": 0`, 1)
	rr := do(t, h, http.MethodPost, "/api/products", invalid)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/products", `{"name": "x", "colour": "green"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown field, got %d", rr.Code)
	}
}

func TestSettingsChangeRecalculatesProducts(t *testing.T) {
	h := newTestServer(t).routes()
	p := createProduct(t, h)

	rr := do(t, h, http.MethodPut, "/api/settings/shipping-cost", `{"cost": 5.49}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if s := decode[pricing.Settings](t, rr); s.DefaultShippingCost != 5.49 {
		t.Fatalf("expected shipping cost 5.49, got %.2f", s.DefaultShippingCost)
	}

	got := decode[products.Product](t, do(t, h, http.MethodGet, "/api/products/"+p.ID, ""))
	if got.CalculatedCosts.ShippingCost != 5.49 {
		t.Fatalf("expected product repriced with 5.49 shipping, got %.2f", got.CalculatedCosts.ShippingCost)
	}

	if rr := do(t, h, http.MethodPut, "/api/settings/payment-provider", `{"id": "bitcoin"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown provider, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPut, "/api/settings/expected-sales", `{"sales": -1}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for negative sales, got %d", rr.Code)
	}
}

func TestTinyExpectedSalesRejected(t *testing.T) {
	h := newTestServer(t).routes()
	p := createProduct(t, h)

	if rr := do(t, h, http.MethodPut, "/api/settings/expected-sales", `{"sales": 1e-320}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for tiny sales, got %d: %s", rr.Code, rr.Body.String())
	}

	s := decode[pricing.Settings](t, do(t, h, http.MethodGet, "/api/settings", ""))
	if s.ExpectedMonthlySales != 100 {
		t.Fatalf("expected sales to stay 100, got %v", s.ExpectedMonthlySales)
	}
	got := decode[products.Product](t, do(t, h, http.MethodGet, "/api/products/"+p.ID, ""))
	if got.CalculatedCosts.FixedCostAllocation != 0.55 {
		t.Fatalf("expected allocation 0.55, got %v", got.CalculatedCosts.FixedCostAllocation)
	}
	createProduct(t, h)
}

func TestProductRecommendation(t *testing.T) {
	h := newTestServer(t).routes()
	p := createProduct(t, h)

	rr := do(t, h, http.MethodGet, "/api/products/"+p.ID+"/recommendation", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rec := decode[tracker.Recommendation](t, rr)
	if rec.TargetMargin != 0.5 || rec.RecommendedPrice.Brutto <= rec.RecommendedPrice.Netto {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}

	if rr := do(t, h, http.MethodGet, "/api/products/missing/recommendation", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestFixedCostEndpoints(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodPost, "/api/settings/fixed-costs", `{"name": "Versicherung", "monthlyCost": 15}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	item := decode[pricing.FixedCostItem](t, rr)

	s := decode[pricing.Settings](t, do(t, h, http.MethodGet, "/api/settings", ""))
	if s.TotalMonthlyFixedCosts != 70 {
		t.Fatalf("expected total 70, got %.2f", s.TotalMonthlyFixedCosts)
	}

	rr = do(t, h, http.MethodPatch, "/api/settings/fixed-costs/"+item.ID, `{"monthlyCost": 25}`)
	if s := decode[pricing.Settings](t, rr); s.TotalMonthlyFixedCosts != 80 {
		t.Fatalf("expected total 80, got %.2f", s.TotalMonthlyFixedCosts)
	}

	rr = do(t, h, http.MethodDelete, "/api/settings/fixed-costs/"+item.ID, "")
	if s := decode[pricing.Settings](t, rr); s.TotalMonthlyFixedCosts != 55 {
		t.Fatalf("expected total 55, got %.2f", s.TotalMonthlyFixedCosts)
	}

	if rr := do(t, h, http.MethodDelete, "/api/settings/fixed-costs/"+item.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestShippingOptionEndpoints(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodPost, "/api/settings/shipping-options", `{"name": "Hermes", "maxWeight": 2, "price": 4.5}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	option := decode[pricing.ShippingOption](t, rr)

	rr = do(t, h, http.MethodPatch, "/api/settings/shipping-options/"+option.ID, `{"price": 4.95}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	s := decode[pricing.Settings](t, do(t, h, http.MethodDelete, "/api/settings/shipping-options/"+option.ID, ""))
	if len(s.ShippingOptions) != 3 {
		t.Fatalf("expected 3 shipping options, got %d", len(s.ShippingOptions))
	}
}

func TestResetSettings(t *testing.T) {
	h := newTestServer(t).routes()

	do(t, h, http.MethodPut, "/api/settings/expected-sales", `{"sales": 400}`)
	s := decode[pricing.Settings](t, do(t, h, http.MethodPost, "/api/settings/reset", ""))
	if s.ExpectedMonthlySales != 100 {
		t.Fatalf("expected default sales 100, got %v", s.ExpectedMonthlySales)
	}
}

func TestCalculateEndpointsRoundTrip(t *testing.T) {
	h := newTestServer(t).routes()
	composition := `"weightGrams": 100,
		"ingredients": [{"name": "Assam", "percentageOfBlend": 100, "pricePerKg": 20}],
		"packaging": {"bagCost": 0.18, "labelCost": 0.12}`

	rr := do(t, h, http.MethodPost, "/api/calculate/price", `{`+composition+`, "targetMargin": 0.4}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	forward := decode[tracker.Quote](t, rr)

	body, _ := json.Marshal(forward.SellingPriceBrutto)
	rr = do(t, h, http.MethodPost, "/api/calculate/margin", `{`+composition+`, "sellingPriceBrutto": `+string(body)+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	inverse := decode[tracker.Quote](t, rr)

	if diff := forward.Costs.ActualMargin - inverse.Costs.ActualMargin; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected matching margins, got %v and %v", forward.Costs.ActualMargin, inverse.Costs.ActualMargin)
	}

	list := decode[[]products.Product](t, do(t, h, http.MethodGet, "/api/products", ""))
	if len(list) != 0 {
		t.Fatalf("calculations must not store products, got %d", len(list))
	}
}

func TestStatsAndRecalculate(t *testing.T) {
	h := newTestServer(t).routes()
	createProduct(t, h)

	if rr := do(t, h, http.MethodPost, "/api/products/recalculate", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	stats := decode[products.Stats](t, do(t, h, http.MethodGet, "/api/stats", ""))
	if stats.TotalProducts != 1 || len(stats.BestProducts) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHandleExportCSVReturnsAttachment(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	p := createProduct(t, h)
	createProduct(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/export.csv?ids="+p.ID, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext()))

	rr := httptest.NewRecorder()
	srv.handleExportCSV(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", rr.Header().Get("Content-Type"))
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "tee-kalkulation-2026-10-18.csv") {
		t.Fatalf("unexpected content disposition %q", got)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines: %s", len(lines), rr.Body.String())
	}
	if !strings.HasPrefix(lines[1], "Earl Grey;EG-100;schwarztee;100;") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestHandleExportXLSX(t *testing.T) {
	h := newTestServer(t).routes()
	createProduct(t, h)

	rr := do(t, h, http.MethodGet, "/api/export.xlsx", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Kalkulation")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Earl Grey" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestParseIDs(t *testing.T) {
	got := parseIDs(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected ids %v", got)
	}
	if parseIDs("") != nil {
		t.Fatalf("expected nil for empty ids")
	}
}
