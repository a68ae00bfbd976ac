package strategy

import (
	"math"
	"testing"

	"signal-systemv1/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

// passingSnap returns a snapshot that satisfies every default scalping
// condition at price 99.
func passingSnap() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		Symbol:    "BTCUSDT",
		Price:     99,
		RSI:       50,
		MACD:      model.MACD{Line: 1.0, Signal: 0.8, Hist: 0.2},
		EMA8:      10,
		EMA21:     9,
		Bollinger: model.Bollinger{Upper: 110, Middle: 105, Lower: 100},
		Volume:    20,
		AvgVolume: 10,
		CVD:       5,
		CVDSlope:  1.0,
	}
}

// ────────────────────────────────────────────────────────────
// Aggregate
// ────────────────────────────────────────────────────────────

func TestEvaluate_AllConditionsPass(t *testing.T) {
	cfg := DefaultConfig(KindScalping)
	ev := Evaluate(passingSnap(), 99, cfg, KindScalping)

	if !ev.Passed {
		t.Fatalf("expected pass, conditions: %+v", ev.Conditions)
	}
	assertClose(t, "entry", ev.Entry, 99, 1e-9)
	// scalping: TP +0.5%, SL −0.3%
	assertClose(t, "take profit", ev.TakeProfit, 99*1.005, 1e-9)
	assertClose(t, "stop loss", ev.StopLoss, 99*0.997, 1e-9)
}

func TestEvaluate_SingleFailureBlocksAggregate(t *testing.T) {
	cfg := DefaultConfig(KindScalping)

	cases := []struct {
		name   string
		mutate func(*model.IndicatorSnapshot)
		check  func(ConditionVector) bool
	}{
		{"rsi below band", func(s *model.IndicatorSnapshot) { s.RSI = 20 },
			func(v ConditionVector) bool { return !v.RSI }},
		{"rsi above band", func(s *model.IndicatorSnapshot) { s.RSI = 80 },
			func(v ConditionVector) bool { return !v.RSI }},
		{"price above lower band", func(s *model.IndicatorSnapshot) { s.Bollinger.Lower = 90 },
			func(v ConditionVector) bool { return !v.Bollinger }},
		{"macd line under signal", func(s *model.IndicatorSnapshot) { s.MACD.Line = 0.5 },
			func(v ConditionVector) bool { return !v.MACD }},
		{"ema8 under ema21", func(s *model.IndicatorSnapshot) { s.EMA8 = 8 },
			func(v ConditionVector) bool { return !v.MovingAverages }},
		{"volume under multiple", func(s *model.IndicatorSnapshot) { s.Volume = 14 },
			func(v ConditionVector) bool { return !v.Volume }},
		{"flat cvd slope", func(s *model.IndicatorSnapshot) { s.CVDSlope = 0 },
			func(v ConditionVector) bool { return !v.CVD }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := passingSnap()
			tc.mutate(&snap)
			ev := Evaluate(snap, 99, cfg, KindScalping)
			if ev.Passed {
				t.Error("expected aggregate fail")
			}
			if !tc.check(ev.Conditions) {
				t.Errorf("wrong condition flagged: %+v", ev.Conditions)
			}
		})
	}
}

// ────────────────────────────────────────────────────────────
// Toggles
// ────────────────────────────────────────────────────────────

func TestEvaluate_DisabledConditionsAreVacuouslyTrue(t *testing.T) {
	cfg := DefaultConfig(KindScalping)
	cfg.UseBollingerLower = false
	cfg.MACDLineAboveSignal = false
	cfg.UseMovingAverages = false
	cfg.CVDSlopePositive = false

	// Snapshot fails every optional condition but passes RSI and volume.
	snap := passingSnap()
	snap.Bollinger.Lower = 50 // price 99 far above lower band
	snap.MACD = model.MACD{Line: -1, Signal: 0}
	snap.EMA8 = 1
	snap.CVDSlope = -5

	ev := Evaluate(snap, 99, cfg, KindScalping)
	if !ev.Passed {
		t.Fatalf("with optionals disabled, aggregate should reduce to RSI AND volume: %+v", ev.Conditions)
	}

	// And still fail on the always-on conditions.
	snap.Volume = 1
	ev = Evaluate(snap, 99, cfg, KindScalping)
	if ev.Passed || ev.Conditions.Volume {
		t.Error("volume condition should still gate the aggregate")
	}
}

func TestEvaluate_MACDAboveZeroRefinement(t *testing.T) {
	cfg := DefaultConfig(KindScalping)
	cfg.MACDLineAboveZero = true

	snap := passingSnap()
	snap.MACD = model.MACD{Line: -0.5, Signal: -1.0} // above signal, below zero
	ev := Evaluate(snap, 99, cfg, KindScalping)
	if ev.Conditions.MACD {
		t.Error("negative line should fail with MACDLineAboveZero set")
	}
}

func TestEvaluate_CVDAboveZeroRefinement(t *testing.T) {
	cfg := DefaultConfig(KindScalping)
	cfg.CVDAboveZero = true

	snap := passingSnap()
	snap.CVDSlope = 2
	snap.CVD = -10
	ev := Evaluate(snap, 99, cfg, KindScalping)
	if ev.Conditions.CVD {
		t.Error("negative CVD should fail with CVDAboveZero set")
	}
}

func TestEvaluate_BollingerMultiplierWidensBand(t *testing.T) {
	cfg := DefaultConfig(KindScalping)
	cfg.BollingerMultiplier = 1.05

	snap := passingSnap()
	snap.Bollinger.Lower = 96 // price 99 > 96, but ≤ 96×1.05 = 100.8
	ev := Evaluate(snap, 99, cfg, KindScalping)
	if !ev.Conditions.Bollinger {
		t.Error("multiplier 1.05 should admit price 99 against lower band 96")
	}
}

// ────────────────────────────────────────────────────────────
// Kind-specific moving averages
// ────────────────────────────────────────────────────────────

func TestMACondition_PerKind(t *testing.T) {
	snap := model.IndicatorSnapshot{
		EMA5: 105, EMA8: 104, EMA13: 103,
		EMA20: 102, EMA21: 101, EMA34: 100,
	}

	// All orderings aligned at price 110.
	for _, kind := range Kinds {
		if !maCondition(snap, 110, kind) {
			t.Errorf("%s: aligned EMAs should pass", kind)
		}
	}

	// Price below the trend EMAs breaks intraday and pump but not scalping.
	if maCondition(snap, 50, KindIntraday) {
		t.Error("intraday requires price above EMA34")
	}
	if maCondition(snap, 50, KindPump) {
		t.Error("pump requires price above EMA13")
	}
	if !maCondition(snap, 50, KindScalping) {
		t.Error("scalping ignores price, compares EMA8 vs EMA21")
	}
}

// ────────────────────────────────────────────────────────────
// Vector plumbing
// ────────────────────────────────────────────────────────────

func TestConditionVector_Map(t *testing.T) {
	v := ConditionVector{RSI: true, Volume: true}
	m := v.Map()

	want := []string{"bollinger", "macd", "rsi", "moving_averages", "volume", "cvd"}
	if len(m) != len(want) {
		t.Fatalf("map has %d keys, want %d", len(m), len(want))
	}
	for _, k := range want {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if !m["rsi"] || m["macd"] {
		t.Errorf("values not carried: %v", m)
	}
}
