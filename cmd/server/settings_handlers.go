package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/teekalk/internal/pricing"
	"github.com/Simplici0/teekalk/internal/settings"
)

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.tracker.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, current)
}

func (s *server) handleReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var next pricing.Settings
	if !s.decodeJSON(w, r, &next) {
		return
	}
	s.respondSettings(w, r)(s.tracker.ReplaceSettings(r.Context(), next))
}

func (s *server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	s.respondSettings(w, r)(s.tracker.ResetSettings(r.Context()))
}

func (s *server) handleSetShippingCost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cost float64 `json:"cost"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.WithDefaultShippingCost(current, req.Cost)
	}))
}

func (s *server) handleSetPaymentProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.WithPaymentProvider(current, req.ID)
	}))
}

func (s *server) handleSetExpectedSales(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sales float64 `json:"sales"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.WithExpectedMonthlySales(current, req.Sales)
	}))
}

func (s *server) handleAddFixedCost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		MonthlyCost float64 `json:"monthlyCost"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var item pricing.FixedCostItem
	_, err := s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		next, added, err := settings.AddFixedCost(current, req.Name, req.MonthlyCost)
		item = added
		return next, err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, item)
}

func (s *server) handleUpdateFixedCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch settings.FixedCostPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.UpdateFixedCost(current, id, patch)
	}))
}

func (s *server) handleRemoveFixedCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.RemoveFixedCost(current, id)
	}))
}

func (s *server) handleAddShippingOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		MaxWeight float64 `json:"maxWeight"`
		Price     float64 `json:"price"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var option pricing.ShippingOption
	_, err := s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		next, added, err := settings.AddShippingOption(current, req.Name, req.MaxWeight, req.Price)
		option = added
		return next, err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, option)
}

func (s *server) handleUpdateShippingOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch settings.ShippingOptionPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.UpdateShippingOption(current, id, patch)
	}))
}

func (s *server) handleRemoveShippingOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respondSettings(w, r)(s.tracker.UpdateSettings(r.Context(), func(current pricing.Settings) (pricing.Settings, error) {
		return settings.RemoveShippingOption(current, id)
	}))
}

// respondSettings writes the stored snapshot returned by a tracker settings call.
func (s *server) respondSettings(w http.ResponseWriter, r *http.Request) func(pricing.Settings, error) {
	return func(stored pricing.Settings, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, stored)
	}
}
