package scoring

import (
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
	"github.com/shopqrepublik/investment-chatbot-backend/pkg/formulas"
)

// Indicator windows. These match the feature definitions the engine scores.
const (
	RSIPeriod            = 14
	MACDFast             = 12
	MACDSlow             = 26
	MACDSignalSpan       = 9
	VolatilityWindow     = 30
	DrawdownWindow       = 90
	TrendWindow          = 90
	MomentumWindow       = 20
	RecentStrengthWindow = 5
)

// Aggregator maps price series to indicator rows. Per-ticker computation is
// independent, so it fans out across a bounded worker pool; the output order
// is fixed by a final sort and never depends on completion order.
type Aggregator struct {
	minBars int
	log     zerolog.Logger
}

// NewAggregator creates an aggregator that drops tickers with fewer than
// minBars price observations.
func NewAggregator(minBars int, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		minBars: minBars,
		log:     log.With().Str("component", "indicator_aggregator").Logger(),
	}
}

// Aggregate computes one IndicatorRow per ticker with at least minBars
// observations, sorted by ticker ascending. Tickers below the threshold are
// silently excluded.
func (a *Aggregator) Aggregate(series map[string]universe.PriceSeries) []IndicatorRow {
	tickers := make([]string, 0, len(series))
	for t, s := range series {
		if s.Len() < a.minBars {
			continue
		}
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rows := make([]IndicatorRow, len(tickers))

	workers := runtime.NumCPU()
	if workers > len(tickers) {
		workers = len(tickers)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = buildRow(tickers[i], series[tickers[i]].Closes())
			}
		}()
	}

	for i := range tickers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	a.log.Debug().
		Int("series", len(series)).
		Int("rows", len(rows)).
		Int("min_bars", a.minBars).
		Msg("Aggregated indicator rows")

	return rows
}

// buildRow computes every indicator for one ticker
func buildRow(ticker string, closes []float64) IndicatorRow {
	row := IndicatorRow{
		Ticker: ticker,
		Price:  closes[len(closes)-1],
	}

	row.RSI = formulas.CalculateRSI(closes, RSIPeriod)
	row.Vol30 = formulas.CalculateAnnualizedVol(closes, VolatilityWindow)
	row.DD90 = formulas.CalculateMaxDrawdown(closes, DrawdownWindow)
	row.Mom20 = formulas.CalculateMomentum(closes, MomentumWindow)
	row.TrendSlope = formulas.CalculateTrendSlope(closes, TrendWindow)
	row.RecentStrength = formulas.CalculateRecentStrength(closes, RecentStrengthWindow)

	if macd := formulas.CalculateMACD(closes, MACDFast, MACDSlow, MACDSignalSpan); macd != nil {
		line := macd.Line
		signal := macd.Signal
		row.MACD = &line
		row.MACDSignal = &signal
		row.MACDAboveSignal = line > signal
		row.MACDAboveZero = line > 0
	}

	return row
}
