package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/teekalk/internal/products"
)

func (s *server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracker.Products(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var draft products.Draft
	if !s.decodeJSON(w, r, &draft) {
		return
	}

	p, err := s.tracker.CreateProduct(r.Context(), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, p)
}

func (s *server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *server) handleProductRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.tracker.Recommendation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch products.Patch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	p, err := s.tracker.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRecalculateProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracker.RecalculateAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracker.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
