package calculator

import (
	"errors"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// ErrNotEnoughData signals that a window is too short to compute an
// indicator. Callers treat it as "no signal this cycle", not as a failure.
var ErrNotEnoughData = errors.New("not enough data")

// NeutralRSI is returned when a window is too short to seed the calculation
// at all. It is an internal default and never surfaces as an alert.
const NeutralRSI = 50.0

// WilderRSI computes the Wilder-smoothed RSI over the given period.
//
// Fewer than period prices returns NeutralRSI. Exactly period prices is not
// enough to seed the averages plus walk one step, so it returns
// ErrNotEnoughData. Otherwise the first period deltas seed avgGain/avgLoss
// with a simple average and the remaining prices are folded in with Wilder
// smoothing.
func WilderRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return NeutralRSI, nil
	}
	if len(prices) < period+1 {
		return 0, ErrNotEnoughData
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // keep losses positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// Prices extracts the price values from a chronologically ordered window.
func Prices(window []model.PricePoint) []float64 {
	out := make([]float64, len(window))
	for i, p := range window {
		out[i] = p.Price
	}
	return out
}
