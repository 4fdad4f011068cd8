// Package handlers provides HTTP handlers for ticker analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service *analysis.Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyze handles GET /api/v1/analysis/{ticker}
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	snapshot, err := h.service.Analyze(ticker)
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
