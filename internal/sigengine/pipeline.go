// Package sigengine is the per-symbol evaluation pipeline and its service
// wrapper: ticks in, indicator snapshots and edge-triggered signals out.
package sigengine

import (
	"sync"

	"signal-systemv1/internal/cvd"
	"signal-systemv1/internal/indicator"
	"signal-systemv1/internal/model"
	"signal-systemv1/internal/strategy"
	"signal-systemv1/internal/trend"
)

const (
	// DefaultHistoryLen caps the per-symbol price/volume history.
	DefaultHistoryLen = 100
	// cvdTrendLookback is the window for bullish/bearish classification.
	cvdTrendLookback = 10
	// cvdSlopeLookback is the default slope window carried on snapshots;
	// per-strategy lookbacks are applied during evaluation.
	cvdSlopeLookback = 5
)

// symbolState is the bounded tick history for one symbol. Its mutex makes
// tick processing strictly sequential per symbol; different symbols never
// share state and run fully in parallel.
type symbolState struct {
	mu      sync.Mutex
	prices  []float64
	volumes []float64
}

// Pipeline evaluates every tick: bounded history append, stateless indicator
// recompute, stateful CVD update, strategy evaluation, and edge detection.
type Pipeline struct {
	histLen  int
	cvd      *cvd.Store
	provider strategy.Provider
	edges    *strategy.EdgeDetector
	history  *trend.History

	mu      sync.RWMutex
	symbols map[string]*symbolState
}

// NewPipeline creates a pipeline. histLen <= 0 selects DefaultHistoryLen;
// history may be nil to disable snapshot retention.
func NewPipeline(histLen int, cvdStore *cvd.Store, provider strategy.Provider, history *trend.History) *Pipeline {
	if histLen <= 0 {
		histLen = DefaultHistoryLen
	}
	return &Pipeline{
		histLen:  histLen,
		cvd:      cvdStore,
		provider: provider,
		edges:    strategy.NewEdgeDetector(),
		history:  history,
		symbols:  make(map[string]*symbolState, 64),
	}
}

// state returns (creating if needed) the per-symbol state.
func (p *Pipeline) state(symbol string) *symbolState {
	p.mu.RLock()
	st, ok := p.symbols[symbol]
	p.mu.RUnlock()
	if ok {
		return st
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok = p.symbols[symbol]; ok {
		return st
	}
	st = &symbolState{
		prices:  make([]float64, 0, p.histLen),
		volumes: make([]float64, 0, p.histLen),
	}
	p.symbols[symbol] = st
	return st
}

// SymbolCount returns the number of symbols with live state.
func (p *Pipeline) SymbolCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.symbols)
}

// Process runs one tick through the full pipeline and returns the snapshot
// plus any signals whose aggregate decision just transitioned false→true.
// A tick is either fully processed or not started; there is no partial state.
func (p *Pipeline) Process(tick model.Tick) (model.IndicatorSnapshot, []model.Signal) {
	st := p.state(tick.Symbol)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.prices = append(st.prices, tick.Price)
	st.volumes = append(st.volumes, tick.Volume)
	if over := len(st.prices) - p.histLen; over > 0 {
		st.prices = append(st.prices[:0], st.prices[over:]...)
		st.volumes = append(st.volumes[:0], st.volumes[over:]...)
	}

	snap := indicator.Snapshot(st.prices, st.volumes, tick.Price)
	snap.Symbol = tick.Symbol
	snap.TS = tick.TickTS

	snap.CVD = p.cvd.Update(tick.Symbol, st.prices, st.volumes)
	snap.CVDTrend = p.cvd.Trend(tick.Symbol, cvdTrendLookback)
	snap.CVDSlope = p.cvd.Slope(tick.Symbol, cvdSlopeLookback)

	var signals []model.Signal
	for _, kind := range strategy.Kinds {
		cfg := p.provider.GetConditions(tick.Symbol, kind)

		evalSnap := snap
		if cfg.CVDLookback != cvdSlopeLookback {
			evalSnap.CVDSlope = p.cvd.Slope(tick.Symbol, cfg.CVDLookback)
		}

		eval := strategy.Evaluate(evalSnap, tick.Price, cfg, kind)
		if !p.edges.Observe(tick.Symbol, kind, eval.Passed) {
			continue
		}

		signals = append(signals, model.Signal{
			Symbol:     tick.Symbol,
			Strategy:   string(kind),
			TS:         tick.TickTS,
			Entry:      eval.Entry,
			TakeProfit: eval.TakeProfit,
			StopLoss:   eval.StopLoss,
			Snapshot:   evalSnap,
			Conditions: eval.Conditions.Map(),
		})
	}

	if p.history != nil {
		p.history.Record(snap)
	}
	return snap, signals
}

// History exposes the trend query surface (may be nil).
func (p *Pipeline) History() *trend.History { return p.history }
