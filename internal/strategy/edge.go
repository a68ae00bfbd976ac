package strategy

import "sync"

// EdgeState is the two-state machine per (symbol, kind) pair.
type EdgeState int

const (
	// StateArmed means the aggregate decision was false on the last tick;
	// the next true fires a trigger.
	StateArmed EdgeState = iota
	// StateTriggered means the aggregate is currently true; sustained
	// satisfaction fires nothing further until the conditions lapse.
	StateTriggered
)

// EdgeDetector tracks aggregate-decision transitions per (symbol, kind) and
// raises exactly one trigger on each false→true edge. true→false resets
// silently. This makes signal emission idempotent under sustained conditions.
type EdgeDetector struct {
	mu     sync.Mutex
	states map[string]EdgeState
}

// NewEdgeDetector creates an EdgeDetector with all pairs implicitly ARMED.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{states: make(map[string]EdgeState)}
}

// Observe records the aggregate decision for one tick and reports whether a
// trigger fires. The state transition and the fire decision are atomic.
func (d *EdgeDetector) Observe(symbol string, kind Kind, passed bool) bool {
	key := pairKey(symbol, kind)

	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.states[key] // zero value is StateArmed
	if !passed {
		d.states[key] = StateArmed
		return false
	}
	if state == StateTriggered {
		return false
	}
	d.states[key] = StateTriggered
	return true
}

// State returns the current edge state for a pair (ARMED if never observed).
func (d *EdgeDetector) State(symbol string, kind Kind) EdgeState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.states[pairKey(symbol, kind)]
}
