package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
	"github.com/shopqrepublik/investment-chatbot-backend/pkg/formulas"
)

// PriceSource supplies the price history for one ticker
type PriceSource interface {
	GetPriceSeries(ticker string, since time.Time) (universe.PriceSeries, error)
}

// Service computes technical snapshots, consulting the cache first
type Service struct {
	prices       PriceSource
	cache        *Cache
	lookbackDays int
	log          zerolog.Logger
}

// NewService creates an analysis service. The cache may be nil, in which
// case every request recomputes the snapshot.
func NewService(prices PriceSource, cache *Cache, lookbackDays int, log zerolog.Logger) *Service {
	return &Service{
		prices:       prices,
		cache:        cache,
		lookbackDays: lookbackDays,
		log:          log.With().Str("component", "analysis_service").Logger(),
	}
}

// Analyze returns the technical snapshot for a ticker. A cached snapshot is
// reused as long as it was computed from the same last bar and has not
// expired; otherwise the snapshot is recomputed and re-cached.
func (s *Service) Analyze(ticker string) (*Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	since := time.Now().UTC().AddDate(0, 0, -s.lookbackDays)
	series, err := s.prices.GetPriceSeries(ticker, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price series: %w", err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ticker, series.LastDate()); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Snapshot cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	snapshot := buildSnapshot(ticker, series)

	if s.cache != nil {
		if err := s.cache.Put(snapshot); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Snapshot cache write failed")
		}
	}

	return snapshot, nil
}

// buildSnapshot computes every indicator from the closes
func buildSnapshot(ticker string, series universe.PriceSeries) *Snapshot {
	closes := series.Closes()
	price := closes[len(closes)-1]

	snapshot := &Snapshot{
		Ticker:  ticker,
		BarDate: series.LastDate(),
		Price:   price,
		Bars:    len(closes),

		SMA20:  formulas.CalculateSMA(closes, 20),
		SMA50:  formulas.CalculateSMA(closes, 50),
		SMA200: formulas.CalculateSMA(closes, 200),

		RSI:            formulas.CalculateRSI(closes, scoring.RSIPeriod),
		Vol30:          formulas.CalculateAnnualizedVol(closes, scoring.VolatilityWindow),
		DD90:           formulas.CalculateMaxDrawdown(closes, scoring.DrawdownWindow),
		Mom20:          formulas.CalculateMomentum(closes, scoring.MomentumWindow),
		TrendSlope:     formulas.CalculateTrendSlope(closes, scoring.TrendWindow),
		RecentStrength: formulas.CalculateRecentStrength(closes, scoring.RecentStrengthWindow),
	}

	if snapshot.SMA20 != nil && *snapshot.SMA20 != 0 {
		vs := price / *snapshot.SMA20 - 1.0
		snapshot.PriceVsSMA20 = &vs
	}

	if pos := formulas.CalculateBollingerPosition(closes, 20, 2.0); pos != nil {
		pctB := pos.Position
		bands := pos.Bands
		snapshot.BollingerPctB = &pctB
		snapshot.Bands = &bands
	}

	if macd := formulas.CalculateMACD(closes, scoring.MACDFast, scoring.MACDSlow, scoring.MACDSignalSpan); macd != nil {
		line := macd.Line
		signal := macd.Signal
		histogram := macd.Histogram
		snapshot.MACD = &line
		snapshot.MACDSignal = &signal
		snapshot.MACDHistogram = &histogram
		snapshot.MACDAboveSignal = line > signal
		snapshot.MACDAboveZero = line > 0
	}

	return snapshot
}
