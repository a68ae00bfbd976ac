package sigengine

import (
	"testing"
	"time"

	"signal-systemv1/internal/cvd"
	"signal-systemv1/internal/model"
	"signal-systemv1/internal/strategy"
	"signal-systemv1/internal/trend"
)

// volumeOnlyProvider narrows every strategy to the volume condition so the
// test controls the aggregate decision through tick volumes alone.
type volumeOnlyProvider struct{}

func (volumeOnlyProvider) GetConditions(string, strategy.Kind) strategy.Config {
	cfg := strategy.DefaultConfig(strategy.KindScalping)
	cfg.RSIMin = 0
	cfg.RSIMax = 100
	cfg.UseBollingerLower = false
	cfg.MACDLineAboveSignal = false
	cfg.UseMovingAverages = false
	cfg.CVDSlopePositive = false
	cfg.VolumeMultiplier = 1.5
	return cfg
}

func tick(symbol string, price, volume float64) model.Tick {
	return model.Tick{Symbol: symbol, Price: price, Volume: volume, TickTS: time.Now().UTC()}
}

func TestPipeline_EmitsSignalOnVolumeSpikeEdge(t *testing.T) {
	p := NewPipeline(100, cvd.NewStore(0), volumeOnlyProvider{}, nil)

	// Build up 20 quiet ticks: volume condition needs a full 20-sample
	// average, and a flat volume never exceeds 1.5× its own average.
	for i := 0; i < 20; i++ {
		_, signals := p.Process(tick("BTCUSDT", 100+float64(i%3), 10))
		if len(signals) != 0 {
			t.Fatalf("tick %d: unexpected signals %v", i, signals)
		}
	}

	// Spike: avg of last 20 = (19×10 + 100)/20 = 14.5; 100 > 21.75.
	// All three strategy kinds share the config, so all three fire.
	_, signals := p.Process(tick("BTCUSDT", 101, 100))
	if len(signals) != len(strategy.Kinds) {
		t.Fatalf("spike tick: got %d signals, want %d", len(signals), len(strategy.Kinds))
	}

	seen := map[string]bool{}
	for _, sig := range signals {
		seen[sig.Strategy] = true
		if sig.Symbol != "BTCUSDT" {
			t.Errorf("signal symbol = %q", sig.Symbol)
		}
		if sig.Entry != 101 {
			t.Errorf("signal entry = %v, want 101", sig.Entry)
		}
		if !sig.Conditions["volume"] {
			t.Errorf("signal conditions missing volume pass: %v", sig.Conditions)
		}
		if sig.TakeProfit <= sig.Entry || sig.StopLoss >= sig.Entry {
			t.Errorf("exit levels inverted: entry=%v tp=%v sl=%v", sig.Entry, sig.TakeProfit, sig.StopLoss)
		}
	}
	for _, kind := range strategy.Kinds {
		if !seen[string(kind)] {
			t.Errorf("no signal for kind %s", kind)
		}
	}

	// Sustained spike must not re-fire.
	_, signals = p.Process(tick("BTCUSDT", 101, 100))
	if len(signals) != 0 {
		t.Fatalf("sustained condition re-fired: %d signals", len(signals))
	}

	// Lapse, then spike again: a fresh edge fires once more.
	for i := 0; i < 3; i++ {
		if _, signals = p.Process(tick("BTCUSDT", 101, 10)); len(signals) != 0 {
			t.Fatalf("quiet tick fired %d signals", len(signals))
		}
	}
	_, signals = p.Process(tick("BTCUSDT", 102, 200))
	if len(signals) != len(strategy.Kinds) {
		t.Fatalf("second edge: got %d signals, want %d", len(signals), len(strategy.Kinds))
	}
}

func TestPipeline_SnapshotCarriesIdentityAndCVD(t *testing.T) {
	p := NewPipeline(100, cvd.NewStore(0), volumeOnlyProvider{}, nil)

	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	p.Process(model.Tick{Symbol: "ETHUSDT", Price: 100, Volume: 5, TickTS: ts})
	snap, _ := p.Process(model.Tick{Symbol: "ETHUSDT", Price: 102, Volume: 5, TickTS: ts.Add(time.Second)})

	if snap.Symbol != "ETHUSDT" {
		t.Errorf("snapshot symbol = %q", snap.Symbol)
	}
	if !snap.TS.Equal(ts.Add(time.Second)) {
		t.Errorf("snapshot ts = %v", snap.TS)
	}
	// Two ticks, price up: CVD back-fill gives series [0, +5].
	if snap.CVD != 5 {
		t.Errorf("snapshot CVD = %v, want 5", snap.CVD)
	}
	if snap.CVDTrend == "" {
		t.Error("snapshot CVD trend unset")
	}
}

func TestPipeline_SymbolsAreIsolated(t *testing.T) {
	p := NewPipeline(100, cvd.NewStore(0), volumeOnlyProvider{}, nil)

	for i := 0; i < 20; i++ {
		p.Process(tick("AAA", 100, 10))
		p.Process(tick("BBB", 200, 10))
	}
	if got := p.SymbolCount(); got != 2 {
		t.Fatalf("symbol count = %d, want 2", got)
	}

	// Spike AAA only: BBB's edge state and history stay untouched.
	_, signals := p.Process(tick("AAA", 100, 100))
	if len(signals) == 0 {
		t.Fatal("AAA spike should fire")
	}
	_, signals = p.Process(tick("BBB", 200, 10))
	if len(signals) != 0 {
		t.Fatalf("BBB fired %d signals without a spike", len(signals))
	}
}

func TestPipeline_RecordsSnapshotsForTrendQueries(t *testing.T) {
	history := trend.NewHistory(time.Minute)
	p := NewPipeline(100, cvd.NewStore(0), volumeOnlyProvider{}, history)

	for i := 0; i < 5; i++ {
		p.Process(tick("BTCUSDT", 100+float64(i), 10))
	}

	st, err := history.Stats("BTCUSDT", "price", 30*time.Second)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Samples != 5 {
		t.Errorf("recorded samples = %d, want 5", st.Samples)
	}
	if st.Direction != "up" {
		t.Errorf("direction = %q, want up", st.Direction)
	}
}
