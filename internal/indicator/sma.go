package indicator

// SMA calculates the simple mean of the last period prices.
// With fewer samples than period it returns the most recent price unmodified;
// an empty input returns 0.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}
