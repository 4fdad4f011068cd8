// Package handlers provides HTTP handlers for portfolio operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/config"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	builder *portfolio.Builder
	repo    *portfolio.Repository
	cfg     *config.Config
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(builder *portfolio.Builder, repo *portfolio.Repository, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		builder: builder,
		repo:    repo,
		cfg:     cfg,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// GenerateRequest is the quiz-answer payload sent by the chatbot frontend
type GenerateRequest struct {
	RiskLevel       string `json:"risk_level"`
	Diversification string `json:"diversification"`
}

// HandleGenerate handles POST /api/v1/portfolio/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode generate request")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tier, err := risk.ParseTier(req.RiskLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	diversification, err := risk.ParseDiversification(req.Diversification)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.builder.Build(portfolio.Request{
		RiskLevel:       tier,
		Diversification: diversification,
		UniverseLimit:   h.cfg.UniverseLimit,
		MinBars:         h.cfg.MinBars,
		LookbackDays:    h.cfg.LookbackDays,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Portfolio generation failed")
		writeError(w, statusForError(err), err.Error())
		return
	}

	if err := h.repo.Save(result); err != nil {
		h.log.Error().Err(err).Str("portfolio_id", result.ID).Msg("Failed to persist portfolio")
		writeError(w, http.StatusInternalServerError, "failed to persist portfolio")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetLatest handles GET /api/v1/portfolio/latest
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.GetLatest()
	if err != nil {
		if errors.Is(err, portfolio.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no portfolio generated yet")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load latest portfolio")
		writeError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetByID handles GET /api/v1/portfolio/{id}
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, portfolio.ErrNotFound) {
			writeError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		h.log.Error().Err(err).Str("portfolio_id", id).Msg("Failed to load portfolio")
		writeError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusForError maps pipeline errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, portfolio.ErrEmptyUniverse),
		errors.Is(err, portfolio.ErrNoPriceData):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrNoIndicatorRows),
		errors.Is(err, portfolio.ErrNoSurvivingRows):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
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
