package indicator

import "math"

// Bollinger calculates Bollinger Bands: middle = SMA(period), upper/lower =
// middle ± 2 standard deviations. With insufficient history all three bands
// collapse to the current price.
func Bollinger(prices []float64, period int, price float64) (upper, middle, lower float64) {
	if len(prices) < period {
		return price, price, price
	}

	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	middle = sum / float64(period)

	var variance float64
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + 2*sd, middle, middle - 2*sd
}
