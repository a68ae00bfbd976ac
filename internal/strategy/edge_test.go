package strategy

import "testing"

func TestEdgeDetector_FiresOncePerEdge(t *testing.T) {
	d := NewEdgeDetector()

	// Decisions: F T T T F T — triggers fire on the two false→true edges.
	decisions := []bool{false, true, true, true, false, true}
	wantFire := []bool{false, true, false, false, false, true}

	for i, passed := range decisions {
		fired := d.Observe("BTCUSDT", KindScalping, passed)
		if fired != wantFire[i] {
			t.Errorf("tick %d (passed=%v): fired=%v, want %v", i, passed, fired, wantFire[i])
		}
	}
}

func TestEdgeDetector_InitialTrueFires(t *testing.T) {
	d := NewEdgeDetector()
	if !d.Observe("X", KindPump, true) {
		t.Error("first observation true should fire (pairs start armed)")
	}
	if d.Observe("X", KindPump, true) {
		t.Error("sustained true must not re-fire")
	}
}

func TestEdgeDetector_PairsAreIndependent(t *testing.T) {
	d := NewEdgeDetector()

	if !d.Observe("BTCUSDT", KindScalping, true) {
		t.Error("BTCUSDT/scalping should fire")
	}
	// Same symbol, different kind: independent state.
	if !d.Observe("BTCUSDT", KindIntraday, true) {
		t.Error("BTCUSDT/intraday should fire independently")
	}
	// Different symbol, same kind: independent state.
	if !d.Observe("ETHUSDT", KindScalping, true) {
		t.Error("ETHUSDT/scalping should fire independently")
	}
	// Original pair is still latched.
	if d.Observe("BTCUSDT", KindScalping, true) {
		t.Error("BTCUSDT/scalping must stay latched")
	}
}

func TestEdgeDetector_StateAccessor(t *testing.T) {
	d := NewEdgeDetector()

	if got := d.State("X", KindScalping); got != StateArmed {
		t.Errorf("unobserved pair state = %v, want armed", got)
	}
	d.Observe("X", KindScalping, true)
	if got := d.State("X", KindScalping); got != StateTriggered {
		t.Errorf("after fire state = %v, want triggered", got)
	}
	d.Observe("X", KindScalping, false)
	if got := d.State("X", KindScalping); got != StateArmed {
		t.Errorf("after lapse state = %v, want armed", got)
	}
}
