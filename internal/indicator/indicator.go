// Package indicator provides technical indicator calculations over a bounded
// price/volume history.
//
// Every function is pure: it recomputes from the slices it is given, holds no
// state, and is deterministic for identical inputs. Short histories are never
// an error — each indicator defines an explicit fallback value (neutral
// RSI=50, zero MACD, collapsed Bollinger bands) and degrades gracefully.
package indicator

import "signal-systemv1/internal/model"

// Snapshot computes all indicators for one symbol from its recent history.
// prices and volumes are ascending by time and must be the same length;
// price is the current (latest) traded price.
//
// CVD fields are owned by the cvd store and left zero here — the pipeline
// fills them in after the stateful CVD update.
func Snapshot(prices, volumes []float64, price float64) model.IndicatorSnapshot {
	line, signal, hist := MACD(prices)
	upper, middle, lower := Bollinger(prices, 20, price)
	avgVol, spike := VolumeSpike(volumes, 20)

	var vol float64
	if len(volumes) > 0 {
		vol = volumes[len(volumes)-1]
	}

	return model.IndicatorSnapshot{
		Price:       price,
		RSI:         RSI(prices, 14),
		MACD:        model.MACD{Line: line, Signal: signal, Hist: hist},
		EMA5:        EMA(prices, 5),
		EMA8:        EMA(prices, 8),
		EMA13:       EMA(prices, 13),
		EMA20:       EMA(prices, 20),
		EMA21:       EMA(prices, 21),
		EMA34:       EMA(prices, 34),
		EMA50:       EMA(prices, 50),
		Bollinger:   model.Bollinger{Upper: upper, Middle: middle, Lower: lower},
		Volume:      vol,
		AvgVolume:   avgVol,
		VolumeSpike: spike,
	}
}
