// Package strategy evaluates configurable multi-condition trading strategies
// against indicator snapshots and detects edge-triggered signal events.
//
// A Config is a strongly-typed record of thresholds and toggles for one
// (symbol, kind) pair. Defaults are merged at construction — never at read
// time — so the evaluator always sees a fully-populated config.
package strategy

import (
	"fmt"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Kind identifies a strategy family with its own condition tuning.
type Kind string

const (
	KindScalping Kind = "scalping"
	KindIntraday Kind = "intraday"
	KindPump     Kind = "pump"
)

// Kinds lists all strategy kinds the pipeline evaluates per tick.
var Kinds = []Kind{KindScalping, KindIntraday, KindPump}

// Config holds the thresholds and per-condition toggles for one strategy.
// Disabled optional conditions evaluate as vacuously true, so operators can
// narrow or widen a strategy without restructuring the evaluator.
type Config struct {
	// RSI band — always evaluated.
	RSIMin float64 `json:"rsi_min" default:"30" validate:"gte=0,lte=100"`
	RSIMax float64 `json:"rsi_max" default:"70" validate:"gte=0,lte=100,gtefield=RSIMin"`

	// Bollinger: pass when price ≤ lower band × multiplier.
	UseBollingerLower   bool    `json:"use_bollinger_lower" default:"true"`
	BollingerMultiplier float64 `json:"bollinger_multiplier" default:"1.0" validate:"gt=0"`

	// MACD: pass when line > signal, optionally also line > 0.
	MACDLineAboveSignal bool `json:"macd_line_above_signal" default:"true"`
	MACDLineAboveZero   bool `json:"macd_line_above_zero"`

	// Moving averages: kind-specific EMA ordering (see evaluator).
	UseMovingAverages bool `json:"use_moving_averages" default:"true"`

	// Volume: always evaluated — volume > avgVolume × multiplier.
	VolumeMultiplier float64 `json:"volume_multiplier" default:"1.5" validate:"gt=0"`

	// CVD: pass when slope > 0, optionally also CVD > 0.
	CVDSlopePositive bool `json:"cvd_slope_positive" default:"true"`
	CVDAboveZero     bool `json:"cvd_above_zero"`
	CVDLookback      int  `json:"cvd_lookback" default:"5" validate:"gt=0"`

	// Exit percentages applied to the entry price at trigger time.
	TakeProfitPct float64 `json:"take_profit_pct" default:"1.0" validate:"gt=0"`
	StopLossPct   float64 `json:"stop_loss_pct" default:"0.5" validate:"gt=0"`
}

var validate = validator.New()

// Validate checks numeric fields for operator mistakes (inverted RSI band,
// non-positive multipliers). Called by config owners on mutation; the
// evaluator itself never validates.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}
	return nil
}

// DefaultConfig returns a fully-populated config for a strategy kind.
func DefaultConfig(kind Kind) Config {
	var cfg Config
	// defaults.Set only errors on unsupported tag types; the tags are static.
	_ = defaults.Set(&cfg)

	switch kind {
	case KindScalping:
		cfg.TakeProfitPct = 0.5
		cfg.StopLossPct = 0.3
	case KindIntraday:
		cfg.TakeProfitPct = 1.5
		cfg.StopLossPct = 0.8
		cfg.CVDLookback = 10
	case KindPump:
		cfg.UseBollingerLower = false
		cfg.RSIMax = 85
		cfg.VolumeMultiplier = 3.0
		cfg.TakeProfitPct = 2.0
		cfg.StopLossPct = 1.0
	}
	return cfg
}

// Provider supplies the active config for a (symbol, kind) pair.
// Absence must never fail the evaluator: implementations substitute the
// built-in default when nothing has been configured.
type Provider interface {
	GetConditions(symbol string, kind Kind) Config
}

// MemoryProvider is a mutex-guarded in-memory Provider with per-pair
// overrides over the kind defaults.
type MemoryProvider struct {
	mu        sync.RWMutex
	overrides map[string]Config // key: "symbol:kind"
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{overrides: make(map[string]Config)}
}

func pairKey(symbol string, kind Kind) string {
	return symbol + ":" + string(kind)
}

// GetConditions returns the override for (symbol, kind) or the kind default.
func (p *MemoryProvider) GetConditions(symbol string, kind Kind) Config {
	p.mu.RLock()
	cfg, ok := p.overrides[pairKey(symbol, kind)]
	p.mu.RUnlock()
	if ok {
		return cfg
	}
	return DefaultConfig(kind)
}

// SetConditions installs an override after validating it.
func (p *MemoryProvider) SetConditions(symbol string, kind Kind, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.overrides[pairKey(symbol, kind)] = cfg
	p.mu.Unlock()
	return nil
}

// All returns a copy of the current overrides (for persistence).
func (p *MemoryProvider) All() map[string]Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Config, len(p.overrides))
	for k, v := range p.overrides {
		out[k] = v
	}
	return out
}

// Replace swaps the whole override set (used when restoring from storage).
// Invalid entries are dropped.
func (p *MemoryProvider) Replace(overrides map[string]Config) {
	clean := make(map[string]Config, len(overrides))
	for k, v := range overrides {
		if v.Validate() == nil {
			clean[k] = v
		}
	}
	p.mu.Lock()
	p.overrides = clean
	p.mu.Unlock()
}
