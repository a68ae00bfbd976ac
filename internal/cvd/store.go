// Package cvd maintains per-symbol cumulative volume delta series.
//
// Unlike the pure indicator functions, the CVD series is stateful: the first
// update for a symbol back-fills the series from the full available history,
// and every later update appends exactly one point from the latest tick.
// Each symbol's series is guarded by its own mutex — concurrent ticks for
// different symbols never contend.
package cvd

import (
	"sync"

	"signal-systemv1/internal/model"
)

// DefaultMaxLen caps each symbol's series; oldest points are evicted first.
const DefaultMaxLen = 100

// Store holds one CVD series per symbol.
type Store struct {
	mu     sync.RWMutex
	series map[string]*series
	maxLen int
}

// series is the per-symbol state. mu is the single-writer lock for this
// symbol; the Store map lock is never held while computing.
type series struct {
	mu     sync.Mutex
	points []float64
	seeded bool
}

// NewStore creates a CVD store. maxLen <= 0 selects DefaultMaxLen.
func NewStore(maxLen int) *Store {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Store{
		series: make(map[string]*series, 64),
		maxLen: maxLen,
	}
}

// get returns (creating if needed) the series for a symbol.
func (s *Store) get(symbol string) *series {
	s.mu.RLock()
	sr, ok := s.series[symbol]
	s.mu.RUnlock()
	if ok {
		return sr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sr, ok = s.series[symbol]; ok {
		return sr
	}
	sr = &series{}
	s.series[symbol] = sr
	return sr
}

// delta returns the signed volume contribution for a price move.
func delta(prev, cur, volume float64) float64 {
	switch {
	case cur > prev:
		return volume
	case cur < prev:
		return -volume
	default:
		return 0
	}
}

// Update advances the symbol's series from the current history.
// prices and volumes are ascending by time and equal length.
//
// The first call with ≥2 paired samples back-fills the whole series in one
// walk (leading zero anchor, then one cumulative point per consecutive price
// pair). Subsequent calls append exactly one point using only the latest two
// prices and the latest volume — O(1) per tick. Returns the current CVD value.
func (s *Store) Update(symbol string, prices, volumes []float64) float64 {
	sr := s.get(symbol)
	sr.mu.Lock()
	defer sr.mu.Unlock()

	n := len(prices)
	if !sr.seeded {
		if n < 2 {
			return 0
		}
		sr.points = make([]float64, 0, n)
		sr.points = append(sr.points, 0)
		cum := 0.0
		for i := 1; i < n; i++ {
			cum += delta(prices[i-1], prices[i], volumes[i])
			sr.points = append(sr.points, cum)
		}
		sr.trim(s.maxLen)
		sr.seeded = true
		return sr.points[len(sr.points)-1]
	}

	if n < 2 {
		return sr.points[len(sr.points)-1]
	}

	last := sr.points[len(sr.points)-1]
	next := last + delta(prices[n-2], prices[n-1], volumes[n-1])
	sr.points = append(sr.points, next)
	sr.trim(s.maxLen)
	return next
}

// trim drops oldest points until the series fits maxLen.
func (sr *series) trim(maxLen int) {
	if over := len(sr.points) - maxLen; over > 0 {
		sr.points = append(sr.points[:0], sr.points[over:]...)
	}
}

// Value returns the current CVD value for a symbol (0 if unknown).
func (s *Store) Value(symbol string) float64 {
	sr := s.get(symbol)
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if len(sr.points) == 0 {
		return 0
	}
	return sr.points[len(sr.points)-1]
}

// Series returns a copy of the symbol's series (for diagnostics and tests).
func (s *Store) Series(symbol string) []float64 {
	sr := s.get(symbol)
	sr.mu.Lock()
	defer sr.mu.Unlock()
	out := make([]float64, len(sr.points))
	copy(out, sr.points)
	return out
}

// Slope returns the ordinary least-squares regression slope over the last
// lookback+1 points (x = index, y = CVD). Returns 0 when fewer than
// lookback+1 points exist or the window has fewer than 2 points.
func (s *Store) Slope(symbol string, lookback int) float64 {
	sr := s.get(symbol)
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if len(sr.points) < lookback+1 {
		return 0
	}
	window := sr.points[len(sr.points)-(lookback+1):]
	n := float64(len(window))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range window {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Trend classifies the series direction over the last lookback points:
// relative change > +10% is bullish, < −10% is bearish, otherwise neutral.
// Returns neutral when fewer than lookback points exist.
func (s *Store) Trend(symbol string, lookback int) model.CVDTrend {
	sr := s.get(symbol)
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if len(sr.points) < lookback {
		return model.TrendNeutral
	}
	window := sr.points[len(sr.points)-lookback:]
	first := window[0]
	last := window[len(window)-1]

	denom := first
	if denom == 0 {
		denom = 1
	}
	change := (last - first) / denom

	switch {
	case change > 0.10:
		return model.TrendBullish
	case change < -0.10:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}
