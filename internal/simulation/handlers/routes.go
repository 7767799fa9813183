package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers all simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Monte Carlo runs can be heavy; give them a longer budget than the
	// server-wide default.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Route("/sim", func(r chi.Router) {
			r.Post("/asset", h.HandleSimulateAsset)
			r.Post("/portfolio", h.HandleSimulatePortfolio)
		})

		r.Post("/simulate", h.HandlePriceOption)
	})
}
