package strategy

import "signal-systemv1/internal/model"

// ConditionVector is the named boolean outcome of one evaluation.
// Disabled conditions are vacuously true so they never block the aggregate.
type ConditionVector struct {
	Bollinger      bool `json:"bollinger"`
	MACD           bool `json:"macd"`
	RSI            bool `json:"rsi"`
	MovingAverages bool `json:"moving_averages"`
	Volume         bool `json:"volume"`
	CVD            bool `json:"cvd"`
}

// All returns the aggregate decision: logical AND over every condition.
func (v ConditionVector) All() bool {
	return v.Bollinger && v.MACD && v.RSI && v.MovingAverages && v.Volume && v.CVD
}

// Map returns the vector as name→bool, the shape carried on emitted signals.
func (v ConditionVector) Map() map[string]bool {
	return map[string]bool{
		"bollinger":       v.Bollinger,
		"macd":            v.MACD,
		"rsi":             v.RSI,
		"moving_averages": v.MovingAverages,
		"volume":          v.Volume,
		"cvd":             v.CVD,
	}
}

// Evaluation is the full result of checking one strategy against one snapshot.
type Evaluation struct {
	Kind       Kind
	Conditions ConditionVector
	Passed     bool

	Entry      float64
	TakeProfit float64
	StopLoss   float64
}

// Evaluate computes the condition vector for one snapshot under one config.
// Pure: no state is read or written beyond the arguments.
func Evaluate(snap model.IndicatorSnapshot, price float64, cfg Config, kind Kind) Evaluation {
	v := ConditionVector{
		Bollinger:      true,
		MACD:           true,
		RSI:            snap.RSI >= cfg.RSIMin && snap.RSI <= cfg.RSIMax,
		MovingAverages: true,
		Volume:         snap.Volume > snap.AvgVolume*cfg.VolumeMultiplier,
		CVD:            true,
	}

	if cfg.UseBollingerLower {
		v.Bollinger = price <= snap.Bollinger.Lower*cfg.BollingerMultiplier
	}

	if cfg.MACDLineAboveSignal {
		v.MACD = snap.MACD.Line > snap.MACD.Signal
		if v.MACD && cfg.MACDLineAboveZero {
			v.MACD = snap.MACD.Line > 0
		}
	}

	if cfg.UseMovingAverages {
		v.MovingAverages = maCondition(snap, price, kind)
	}

	if cfg.CVDSlopePositive {
		v.CVD = snap.CVDSlope > 0
		if v.CVD && cfg.CVDAboveZero {
			v.CVD = snap.CVD > 0
		}
	}

	return Evaluation{
		Kind:       kind,
		Conditions: v,
		Passed:     v.All(),
		Entry:      price,
		TakeProfit: price * (1 + cfg.TakeProfitPct/100),
		StopLoss:   price * (1 - cfg.StopLossPct/100),
	}
}

// maCondition applies the kind-specific EMA ordering:
//
//	scalping: EMA8 > EMA21 (fast momentum alignment)
//	intraday: price > EMA34 and EMA20 > EMA34 (trend filter)
//	pump:     price > EMA13 and EMA5 > EMA13 (breakout alignment)
func maCondition(snap model.IndicatorSnapshot, price float64, kind Kind) bool {
	switch kind {
	case KindScalping:
		return snap.EMA8 > snap.EMA21
	case KindIntraday:
		return price > snap.EMA34 && snap.EMA20 > snap.EMA34
	case KindPump:
		return price > snap.EMA13 && snap.EMA5 > snap.EMA13
	default:
		return true
	}
}
