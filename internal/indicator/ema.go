package indicator

// EMA calculates the Exponential Moving Average over the whole input,
// seeded with the first sample and smoothed with multiplier 2/(period+1).
// Returns 0 for an empty input.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = (p * multiplier) + (ema * (1 - multiplier))
	}
	return ema
}
