package strategy

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/calculator"
	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

const (
	// RsiPeriod is the Wilder smoothing period.
	RsiPeriod = 14

	// RsiOverboughtLevel and RsiOversoldLevel bound the actionable zones.
	RsiOverboughtLevel = 70.0
	RsiOversoldLevel   = 30.0
)

// RsiEngine classifies a symbol's RSI after every admitted price. It keeps
// no state of its own; repeated in-zone readings re-alert every poll.
type RsiEngine struct {
	history *history.Store
	logger  zerolog.Logger
}

// NewRsiEngine creates an RsiEngine reading from the given price history.
func NewRsiEngine(h *history.Store) *RsiEngine {
	return &RsiEngine{
		history: h,
		logger:  log.With().Str("component", "rsi_engine").Logger(),
	}
}

// Evaluate computes the symbol's RSI and reports whether it sits in an
// actionable zone. Too little history yields no signal.
func (e *RsiEngine) Evaluate(symbol string) (model.RsiSignal, bool) {
	window := e.history.Window(symbol)
	value, err := calculator.WilderRSI(calculator.Prices(window), RsiPeriod)
	if err != nil {
		if !errors.Is(err, calculator.ErrNotEnoughData) {
			e.logger.Error().Err(err).Str("symbol", symbol).Msg("rsi calculation failed")
		}
		return model.RsiSignal{}, false
	}

	var zone model.RsiZone
	switch {
	case value >= RsiOverboughtLevel:
		zone = model.RsiOverbought
	case value <= RsiOversoldLevel:
		zone = model.RsiOversold
	default:
		return model.RsiSignal{}, false
	}

	e.logger.Info().Str("symbol", symbol).Float64("rsi", value).Str("zone", string(zone)).Msg("rsi signal")
	return model.RsiSignal{Symbol: symbol, Value: value, Zone: zone}, true
}
