package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/database"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
)

// SystemHandlers serves the health and system-status endpoints
type SystemHandlers struct {
	log           zerolog.Logger
	historyDB     *database.DB
	portfolioDB   *database.DB
	cacheDB       *database.DB
	universeRepo  *universe.Repository
	portfolioRepo *portfolio.Repository
	startedAt     time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(
	log zerolog.Logger,
	historyDB *database.DB,
	portfolioDB *database.DB,
	cacheDB *database.DB,
	universeRepo *universe.Repository,
	portfolioRepo *portfolio.Repository,
) *SystemHandlers {
	return &SystemHandlers{
		log:           log.With().Str("handler", "system").Logger(),
		historyDB:     historyDB,
		portfolioDB:   portfolioDB,
		cacheDB:       cacheDB,
		universeRepo:  universeRepo,
		portfolioRepo: portfolioRepo,
		startedAt:     time.Now().UTC(),
	}
}

// HealthResponse is the payload of GET /api/v1/health
type HealthResponse struct {
	Status     string            `json:"status"`
	Databases  map[string]string `json:"databases"`
	Tickers    int               `json:"tickers"`
	PriceRows  int64             `json:"price_rows"`
	Portfolios int64             `json:"portfolios"`
}

// HandleHealth handles GET /api/v1/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	databases := make(map[string]string)
	for _, db := range []*database.DB{h.historyDB, h.portfolioDB, h.cacheDB} {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			databases[db.Name()] = err.Error()
			status = "degraded"
		} else {
			databases[db.Name()] = "ok"
		}
	}

	resp := HealthResponse{
		Status:    status,
		Databases: databases,
	}

	if tickers, err := h.universeRepo.GetUniverse(10000); err == nil {
		resp.Tickers = len(tickers)
	} else {
		h.log.Warn().Err(err).Msg("Failed to count tickers")
		resp.Status = "degraded"
	}

	if rows, err := h.universeRepo.CountPriceRows(); err == nil {
		resp.PriceRows = rows
	}

	if count, err := h.portfolioRepo.Count(); err == nil {
		resp.Portfolios = count
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

// SystemStatusResponse is the payload of GET /api/v1/system/status
type SystemStatusResponse struct {
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	Timestamp     string  `json:"timestamp"`
}

// HandleSystemStatus handles GET /api/v1/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		resp.CPUPercent = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		resp.MemoryPercent = memStat.UsedPercent
		resp.MemoryUsedMB = memStat.Used / 1024 / 1024
		resp.MemoryTotalMB = memStat.Total / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
