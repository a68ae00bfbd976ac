// Package trend retains timestamped indicator snapshots per symbol and
// answers read-only diagnostics queries: trend direction/magnitude and
// min/max/avg/volatility for any indicator field over a lookback window.
package trend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"signal-systemv1/internal/model"
)

const (
	// DefaultHorizon bounds how far back snapshots are retained.
	DefaultHorizon = 60 * time.Second
	// DefaultPurgeInterval is the cadence of the retention sweep.
	DefaultPurgeInterval = 10 * time.Second
)

// ErrNoSamples is returned when a query window holds no snapshots.
var ErrNoSamples = errors.New("trend: no samples in window")

// Stats summarizes one indicator field over a lookback window.
type Stats struct {
	Direction  string  `json:"direction"`  // "up", "down", "flat"
	ChangePct  float64 `json:"change_pct"` // first→last relative change
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Avg        float64 `json:"avg"`
	Volatility float64 `json:"volatility"` // standard deviation
	Samples    int     `json:"samples"`
}

// History is a thread-safe per-symbol snapshot retention buffer.
// Writers append on each tick; readers query concurrently.
type History struct {
	mu      sync.RWMutex
	horizon time.Duration
	entries map[string][]model.IndicatorSnapshot
}

// NewHistory creates a History. horizon <= 0 selects DefaultHorizon.
func NewHistory(horizon time.Duration) *History {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &History{
		horizon: horizon,
		entries: make(map[string][]model.IndicatorSnapshot, 64),
	}
}

// Record appends a snapshot under its symbol. Snapshots arrive time-ordered
// within a symbol (the pipeline is sequential per symbol).
func (h *History) Record(snap model.IndicatorSnapshot) {
	h.mu.Lock()
	h.entries[snap.Symbol] = append(h.entries[snap.Symbol], snap)
	h.mu.Unlock()
}

// StartPurger runs the retention sweep on a fixed cadence until ctx is done.
func (h *History) StartPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				h.Purge(now)
			}
		}
	}()
}

// Purge drops snapshots older than the horizon relative to now.
func (h *History) Purge(now time.Time) {
	cutoff := now.Add(-h.horizon)
	h.mu.Lock()
	defer h.mu.Unlock()
	for sym, snaps := range h.entries {
		i := 0
		for i < len(snaps) && snaps[i].TS.Before(cutoff) {
			i++
		}
		if i == 0 {
			continue
		}
		if i == len(snaps) {
			delete(h.entries, sym)
			continue
		}
		h.entries[sym] = append(snaps[:0], snaps[i:]...)
	}
}

// Stats computes trend statistics for one field of one symbol over the last
// lookback seconds of retained snapshots.
func (h *History) Stats(symbol, field string, lookback time.Duration) (Stats, error) {
	cutoff := time.Now().Add(-lookback)

	h.mu.RLock()
	snaps := h.entries[symbol]
	values := make([]float64, 0, len(snaps))
	for _, s := range snaps {
		if s.TS.Before(cutoff) {
			continue
		}
		v, err := fieldValue(&s, field)
		if err != nil {
			h.mu.RUnlock()
			return Stats{}, err
		}
		values = append(values, v)
	}
	h.mu.RUnlock()

	if len(values) == 0 {
		return Stats{}, ErrNoSamples
	}

	st := Stats{
		Min:     values[0],
		Max:     values[0],
		Samples: len(values),
	}
	var sum float64
	for _, v := range values {
		sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
	}
	st.Avg = sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - st.Avg
		variance += d * d
	}
	st.Volatility = math.Sqrt(variance / float64(len(values)))

	first, last := values[0], values[len(values)-1]
	denom := first
	if denom == 0 {
		denom = 1
	}
	st.ChangePct = (last - first) / denom * 100

	switch {
	case last > first:
		st.Direction = "up"
	case last < first:
		st.Direction = "down"
	default:
		st.Direction = "flat"
	}
	return st, nil
}

// fieldValue extracts a named indicator field from a snapshot.
func fieldValue(s *model.IndicatorSnapshot, field string) (float64, error) {
	switch field {
	case "price":
		return s.Price, nil
	case "rsi":
		return s.RSI, nil
	case "macd_line":
		return s.MACD.Line, nil
	case "macd_signal":
		return s.MACD.Signal, nil
	case "macd_hist":
		return s.MACD.Hist, nil
	case "ema5":
		return s.EMA5, nil
	case "ema8":
		return s.EMA8, nil
	case "ema13":
		return s.EMA13, nil
	case "ema20":
		return s.EMA20, nil
	case "ema21":
		return s.EMA21, nil
	case "ema34":
		return s.EMA34, nil
	case "ema50":
		return s.EMA50, nil
	case "bollinger_upper":
		return s.Bollinger.Upper, nil
	case "bollinger_middle":
		return s.Bollinger.Middle, nil
	case "bollinger_lower":
		return s.Bollinger.Lower, nil
	case "volume":
		return s.Volume, nil
	case "avg_volume":
		return s.AvgVolume, nil
	case "cvd":
		return s.CVD, nil
	case "cvd_slope":
		return s.CVDSlope, nil
	default:
		return 0, fmt.Errorf("trend: unknown field %q", field)
	}
}
