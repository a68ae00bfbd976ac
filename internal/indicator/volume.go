package indicator

// spikeMultiplier is how far above average the latest volume must be to flag
// a spike.
const spikeMultiplier = 2.0

// VolumeSpike calculates the average of the last period volumes and whether
// the most recent volume exceeds spikeMultiplier × that average. With
// insufficient history the average defaults to the latest volume and no spike
// is flagged.
func VolumeSpike(volumes []float64, period int) (avg float64, spike bool) {
	if len(volumes) == 0 {
		return 0, false
	}

	latest := volumes[len(volumes)-1]
	if len(volumes) < period {
		return latest, false
	}

	var sum float64
	for i := len(volumes) - period; i < len(volumes); i++ {
		sum += volumes[i]
	}
	avg = sum / float64(period)

	return avg, latest > avg*spikeMultiplier
}
