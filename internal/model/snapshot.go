package model

import (
	"encoding/json"
	"time"
)

// CVDTrend classifies the recent direction of the cumulative volume delta.
type CVDTrend string

const (
	TrendBullish CVDTrend = "bullish"
	TrendBearish CVDTrend = "bearish"
	TrendNeutral CVDTrend = "neutral"
)

// MACD holds the MACD line, its signal line, and the histogram (line − signal).
type MACD struct {
	Line   float64 `json:"line"`
	Signal float64 `json:"signal"`
	Hist   float64 `json:"hist"`
}

// Bollinger holds the three Bollinger band values.
type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorSnapshot is the full set of indicator values computed for one
// symbol on one tick. It is an immutable value: produced fresh per evaluation,
// never mutated across ticks.
type IndicatorSnapshot struct {
	Symbol string    `json:"symbol"`
	TS     time.Time `json:"ts"`
	Price  float64   `json:"price"`

	RSI       float64   `json:"rsi"`
	MACD      MACD      `json:"macd"`
	EMA5      float64   `json:"ema5"`
	EMA8      float64   `json:"ema8"`
	EMA13     float64   `json:"ema13"`
	EMA20     float64   `json:"ema20"`
	EMA21     float64   `json:"ema21"`
	EMA34     float64   `json:"ema34"`
	EMA50     float64   `json:"ema50"`
	Bollinger Bollinger `json:"bollinger"`

	Volume      float64 `json:"volume"`
	AvgVolume   float64 `json:"avg_volume"`
	VolumeSpike bool    `json:"volume_spike"`

	CVD      float64  `json:"cvd"`
	CVDTrend CVDTrend `json:"cvd_trend"`
	CVDSlope float64  `json:"cvd_slope"`
}

// JSON returns the JSON-encoded snapshot (ignoring errors for hot-path usage).
func (s *IndicatorSnapshot) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
