package calculator

// EMA computes the exponential moving average of the values over the given
// period. The first period values seed the EMA with their simple average;
// each remaining value is folded in with weight 2/(period+1).
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(values) < period {
		return 0, ErrNotEnoughData
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
	}
	return ema, nil
}

// ChangePercent returns the percentage change from previous to current.
func ChangePercent(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
