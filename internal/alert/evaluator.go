package alert

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/cooldown"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// VolatilityStep is the bucket granularity for volatility alerts. A move is
// attributed to the largest multiple of the step it reaches, so crossing a
// bigger tier re-alerts even while smaller tiers are still suppressed.
const VolatilityStep = 5

// Evaluator decides which alerts to raise for a symbol on each poll,
// consulting the cooldown tracker and arming it after every emission.
type Evaluator struct {
	cooldowns *cooldown.Tracker
	now       func() time.Time
	logger    zerolog.Logger
}

// NewEvaluator creates an Evaluator gated by the given tracker.
func NewEvaluator(tracker *cooldown.Tracker) *Evaluator {
	return &Evaluator{
		cooldowns: tracker,
		now:       time.Now,
		logger:    log.With().Str("component", "alert_evaluator").Logger(),
	}
}

// Evaluate checks the buy, sell, and volatility conditions for one symbol
// and returns the approved alerts. Every returned alert has already been
// armed in the tracker.
func (e *Evaluator) Evaluate(symbol string, price, changePercent float64, target model.TargetPrice) []model.Alert {
	var alerts []model.Alert

	if target.Buy > 0 && price <= target.Buy && !e.cooldowns.IsIgnored(symbol, model.ReasonBuy) {
		alerts = append(alerts, e.raise(model.Alert{
			Reason: model.ReasonBuy,
			Symbol: symbol,
			Price:  price,
			Target: target.Buy,
		}))
		e.cooldowns.Arm(symbol, model.ReasonBuy)
	}

	if target.Sell > 0 && price >= target.Sell && !e.cooldowns.IsIgnored(symbol, model.ReasonSell) {
		alerts = append(alerts, e.raise(model.Alert{
			Reason: model.ReasonSell,
			Symbol: symbol,
			Price:  price,
			Target: target.Sell,
		}))
		e.cooldowns.Arm(symbol, model.ReasonSell)
	}

	if bucket := VolatilityBucket(changePercent); bucket > 0 {
		if !e.cooldowns.IsIgnoredBucket(symbol, model.ReasonChangePercent, bucket) {
			alerts = append(alerts, e.raise(model.Alert{
				Reason:        model.ReasonChangePercent,
				Symbol:        symbol,
				Price:         price,
				ChangePercent: changePercent,
				Bucket:        bucket,
			}))
			e.cooldowns.ArmBucket(symbol, model.ReasonChangePercent, bucket)
		}
	}

	return alerts
}

func (e *Evaluator) raise(a model.Alert) model.Alert {
	a.ID = uuid.NewString()
	a.CreatedAt = e.now()
	e.logger.Info().
		Str("symbol", a.Symbol).
		Str("reason", string(a.Reason)).
		Float64("price", a.Price).
		Int("bucket", a.Bucket).
		Msg("alert raised")
	return a
}

// VolatilityBucket returns the largest multiple of VolatilityStep that
// |changePercent| meets or exceeds, or 0 when the move is below the first
// tier.
func VolatilityBucket(changePercent float64) int {
	abs := math.Abs(changePercent)
	if abs < VolatilityStep {
		return 0
	}
	return int(abs/VolatilityStep) * VolatilityStep
}
