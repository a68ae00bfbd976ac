package model

import (
	"encoding/json"
	"time"
)

// Signal is emitted exactly once when all conditions of a strategy become
// satisfied for a symbol. Immutable once created; ownership passes to the
// persistence/export sinks.
type Signal struct {
	Symbol   string    `json:"symbol"`
	Strategy string    `json:"strategy"` // "scalping", "intraday", "pump"
	TS       time.Time `json:"ts"`

	Entry      float64 `json:"entry"`
	TakeProfit float64 `json:"take_profit"`
	StopLoss   float64 `json:"stop_loss"`

	Snapshot   IndicatorSnapshot `json:"snapshot"`
	Conditions map[string]bool   `json:"conditions"` // condition vector at trigger time
}

// Key returns a unique key for this signal's (symbol, strategy) pair.
func (s *Signal) Key() string {
	return s.Symbol + ":" + s.Strategy
}

// JSON returns the JSON-encoded signal (ignoring errors for hot-path usage).
func (s *Signal) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
