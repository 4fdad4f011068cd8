package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Post("/generate", h.HandleGenerate)
		r.Get("/latest", h.HandleGetLatest)
		r.Get("/{id}", h.HandleGetByID)
	})
}
