package main

import (
	"net/http"

	"github.com/Simplici0/teekalk/internal/tracker"
)

type priceRequest struct {
	tracker.Composition
	TargetMargin float64 `json:"targetMargin"`
}

type marginRequest struct {
	tracker.Composition
	SellingPriceBrutto float64 `json:"sellingPriceBrutto"`
}

// handleCalculatePrice derives the selling price for a target margin without storing anything.
func (s *server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	quote, err := s.tracker.QuoteForMargin(r.Context(), req.Composition, req.TargetMargin)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, quote)
}

// handleCalculateMargin evaluates a given gross price without storing anything.
func (s *server) handleCalculateMargin(w http.ResponseWriter, r *http.Request) {
	var req marginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	quote, err := s.tracker.QuoteForPrice(r.Context(), req.Composition, req.SellingPriceBrutto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, quote)
}
