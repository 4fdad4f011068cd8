// Package analysis produces per-ticker technical snapshots for the chatbot
// frontend: moving averages, Bollinger position, RSI, MACD posture and the
// risk statistics the scoring pipeline uses. Snapshots are cached until a
// new price bar arrives.
package analysis

import (
	"errors"

	"github.com/shopqrepublik/investment-chatbot-backend/pkg/formulas"
)

// ErrNoData means the ticker has no price history to analyze
var ErrNoData = errors.New("no price data for ticker")

// Snapshot is the full technical picture for one ticker at its last bar.
// Pointer fields are nil when the history is too short for the window.
type Snapshot struct {
	Ticker  string  `json:"ticker" msgpack:"ticker"`
	BarDate string  `json:"bar_date" msgpack:"bar_date"`
	Price   float64 `json:"price" msgpack:"price"`
	Bars    int     `json:"bars" msgpack:"bars"`

	SMA20         *float64 `json:"sma_20" msgpack:"sma_20"`
	SMA50         *float64 `json:"sma_50" msgpack:"sma_50"`
	SMA200        *float64 `json:"sma_200" msgpack:"sma_200"`
	PriceVsSMA20  *float64 `json:"price_vs_sma_20" msgpack:"price_vs_sma_20"`
	BollingerPctB *float64 `json:"bollinger_pct_b" msgpack:"bollinger_pct_b"`

	RSI             *float64 `json:"rsi" msgpack:"rsi"`
	MACD            *float64 `json:"macd" msgpack:"macd"`
	MACDSignal      *float64 `json:"macd_signal" msgpack:"macd_signal"`
	MACDHistogram   *float64 `json:"macd_histogram" msgpack:"macd_histogram"`
	MACDAboveSignal bool     `json:"macd_above_sig" msgpack:"macd_above_sig"`
	MACDAboveZero   bool     `json:"macd_above_zero" msgpack:"macd_above_zero"`

	Vol30          *float64 `json:"vol30" msgpack:"vol30"`
	DD90           *float64 `json:"dd90" msgpack:"dd90"`
	Mom20          *float64 `json:"mom20" msgpack:"mom20"`
	TrendSlope     *float64 `json:"trend_slope" msgpack:"trend_slope"`
	RecentStrength *float64 `json:"recent_strength" msgpack:"recent_strength"`

	Bands *formulas.BollingerBands `json:"bollinger_bands" msgpack:"bollinger_bands"`
}
