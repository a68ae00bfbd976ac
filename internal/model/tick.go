package model

import "time"

// Tick represents a single market data tick from the exchange WebSocket.
// Prices and volumes are float64 — crypto pairs trade at arbitrary precision,
// so there is no fixed-point subunit to normalize to.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`  // last traded quantity
	TickTS time.Time `json:"tick_ts"` // UTC timestamp
}
