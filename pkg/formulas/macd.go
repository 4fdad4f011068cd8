package formulas

// MACDValue holds the current MACD line, signal line and histogram values.
type MACDValue struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateMACDSeries calculates the MACD over the full series:
//
//	macd_line   = EMA(fast) − EMA(slow)
//	signal_line = EMA(macd_line, signal)
//	histogram   = macd_line − signal_line
//
// All EMAs are seeded with the first observed value. Returns nil slices
// if the input series is empty.
func CalculateMACDSeries(closes []float64, fast, slow, signal int) (macdLine, signalLine, histogram []float64) {
	emaFast := CalculateEMASeries(closes, fast)
	emaSlow := CalculateEMASeries(closes, slow)
	if emaFast == nil || emaSlow == nil {
		return nil, nil, nil
	}

	macdLine = make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	signalLine = CalculateEMASeries(macdLine, signal)
	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return macdLine, signalLine, histogram
}

// CalculateMACD calculates the current MACD values with the standard
// 12/26/9 parametrisation unless overridden. Returns nil if the series
// is empty.
func CalculateMACD(closes []float64, fast, slow, signal int) *MACDValue {
	macdLine, signalLine, histogram := CalculateMACDSeries(closes, fast, slow, signal)
	if len(macdLine) == 0 {
		return nil
	}

	last := len(macdLine) - 1
	return &MACDValue{
		Line:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: histogram[last],
	}
}
