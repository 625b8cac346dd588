package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/products"
	"github.com/Simplici0/teekalk/internal/settings"
	"github.com/Simplici0/teekalk/internal/tracker"
)

const maxRequestSize = 1 << 20

type server struct {
	tracker *tracker.Service
	logger  *zap.Logger
	now     func() time.Time
}

func newServer(svc *tracker.Service, logger *zap.Logger) *server {
	return &server{tracker: svc, logger: logger, now: time.Now}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleReplaceSettings)
			r.Post("/reset", s.handleResetSettings)
			r.Put("/shipping-cost", s.handleSetShippingCost)
			r.Put("/payment-provider", s.handleSetPaymentProvider)
			r.Put("/expected-sales", s.handleSetExpectedSales)
			r.Post("/fixed-costs", s.handleAddFixedCost)
			r.Patch("/fixed-costs/{id}", s.handleUpdateFixedCost)
			r.Delete("/fixed-costs/{id}", s.handleRemoveFixedCost)
			r.Post("/shipping-options", s.handleAddShippingOption)
			r.Patch("/shipping-options/{id}", s.handleUpdateShippingOption)
			r.Delete("/shipping-options/{id}", s.handleRemoveShippingOption)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Post("/recalculate", s.handleRecalculateProducts)
			r.Get("/{id}", s.handleGetProduct)
			r.Get("/{id}/recommendation", s.handleProductRecommendation)
			r.Patch("/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
		})

		r.Get("/stats", s.handleStats)
		r.Post("/calculate/price", s.handleCalculatePrice)
		r.Post("/calculate/margin", s.handleCalculateMargin)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func (s *server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps domain errors to HTTP statuses; anything unknown is logged as a 500.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, products.ErrNotFound), errors.Is(err, settings.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, products.ErrInvalid),
		errors.Is(err, settings.ErrInvalidValue),
		errors.Is(err, settings.ErrUnknownProvider):
		s.jsonError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
