package strategy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/calculator"
	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

const (
	// RsEmaPeriod is the EMA period applied to the ratio window. It doubles
	// as the minimum number of ratio points required before evaluating.
	RsEmaPeriod = 50

	ratioWindowCap = history.WindowCap
)

// RsStatePersister durably stores a symbol's relative strength state after
// every evaluation. Losing this state silently would corrupt future
// crossover detection, so write failures propagate.
type RsStatePersister interface {
	SaveRelativeStrengthState(symbol string, state model.RelativeStrengthState) error
}

// RelativeStrengthEngine detects crossovers of a symbol's price ratio
// against the benchmark through the ratio's 50-period EMA. The first
// evaluation for a symbol only seeds state and never signals.
type RelativeStrengthEngine struct {
	mu        sync.Mutex
	benchmark string
	history   *history.Store
	states    map[string]*model.RelativeStrengthState
	persist   RsStatePersister
	logger    zerolog.Logger
}

// NewRelativeStrengthEngine creates an engine comparing symbols against the
// benchmark, seeded with previously persisted per-symbol states.
func NewRelativeStrengthEngine(benchmark string, h *history.Store, seed map[string]model.RelativeStrengthState, persist RsStatePersister) *RelativeStrengthEngine {
	states := make(map[string]*model.RelativeStrengthState, len(seed))
	for sym, st := range seed {
		cp := st
		states[sym] = &cp
	}
	return &RelativeStrengthEngine{
		benchmark: benchmark,
		history:   h,
		states:    states,
		persist:   persist,
		logger:    log.With().Str("component", "relative_strength").Logger(),
	}
}

// Benchmark returns the benchmark symbol.
func (e *RelativeStrengthEngine) Benchmark() string { return e.benchmark }

// Evaluate refreshes the symbol's ratio window from the shared price history
// and reports a crossover signal if one occurred since the previous
// evaluation. The benchmark itself never evaluates.
func (e *RelativeStrengthEngine) Evaluate(symbol string) (model.RelativeStrengthSignal, bool, error) {
	if symbol == e.benchmark {
		return model.RelativeStrengthSignal{}, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.states[symbol]
	if !ok {
		state = &model.RelativeStrengthState{}
		e.states[symbol] = state
	}

	ratios := e.mergedRatios(symbol, state.RatioWindow)
	if len(ratios) == 0 {
		return model.RelativeStrengthSignal{}, false, nil
	}

	next := *state
	next.RatioWindow = ratios

	if len(ratios) < RsEmaPeriod {
		// Record the ratio points but do not evaluate yet.
		if err := e.commit(symbol, next); err != nil {
			return model.RelativeStrengthSignal{}, false, err
		}
		return model.RelativeStrengthSignal{}, false, nil
	}

	currentRatio := ratios[len(ratios)-1].Price
	currentEma, err := calculator.EMA(calculator.Prices(ratios), RsEmaPeriod)
	if err != nil {
		return model.RelativeStrengthSignal{}, false, fmt.Errorf("ema for %s: %w", symbol, err)
	}

	signal, emitted := crossover(*state, currentRatio, currentEma)
	signal.Symbol = symbol

	next.PrevRatio = currentRatio
	next.PrevEma = currentEma
	next.Initialized = true
	if err := e.commit(symbol, next); err != nil {
		return model.RelativeStrengthSignal{}, false, err
	}

	if emitted {
		e.logger.Info().
			Str("symbol", symbol).
			Str("direction", string(signal.Direction)).
			Float64("ratio", signal.Ratio).
			Float64("ema", signal.Ema).
			Msg("relative strength crossover")
	}
	return signal, emitted, nil
}

// crossover applies the crossover rule against the previous evaluation.
func crossover(state model.RelativeStrengthState, currentRatio, currentEma float64) (model.RelativeStrengthSignal, bool) {
	if !state.Initialized {
		return model.RelativeStrengthSignal{}, false
	}
	signal := model.RelativeStrengthSignal{
		Ratio:       currentRatio,
		Ema:         currentEma,
		PercentDiff: (currentRatio - currentEma) / currentEma * 100,
	}
	switch {
	case state.PrevRatio < state.PrevEma && currentRatio > currentEma:
		signal.Direction = model.RsOutperforming
		return signal, true
	case state.PrevRatio > state.PrevEma && currentRatio < currentEma:
		signal.Direction = model.RsUnderperforming
		return signal, true
	}
	return model.RelativeStrengthSignal{}, false
}

// mergedRatios upserts a ratio point for every date present in both the
// symbol's and the benchmark's price windows, skipping non-positive
// benchmark prices. Same upsert and cap semantics as the price windows, but
// without the holiday guard.
func (e *RelativeStrengthEngine) mergedRatios(symbol string, window []model.PricePoint) []model.PricePoint {
	benchWindow := e.history.Window(e.benchmark)
	if len(benchWindow) == 0 {
		return append([]model.PricePoint(nil), window...)
	}
	benchByDay := make(map[time.Time]float64, len(benchWindow))
	for _, p := range benchWindow {
		benchByDay[p.Date] = p.Price
	}

	byDay := make(map[time.Time]float64, len(window))
	for _, p := range window {
		byDay[p.Date] = p.Price
	}
	for _, p := range e.history.Window(symbol) {
		bench, ok := benchByDay[p.Date]
		if !ok || bench <= 0 {
			continue
		}
		byDay[p.Date] = p.Price / bench
	}

	merged := make([]model.PricePoint, 0, len(byDay))
	for day, ratio := range byDay {
		merged = append(merged, model.PricePoint{Date: day, Price: ratio})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	if len(merged) > ratioWindowCap {
		merged = merged[len(merged)-ratioWindowCap:]
	}
	return merged
}

// commit persists the state then swaps it in, keeping memory consistent with
// storage when a write fails.
func (e *RelativeStrengthEngine) commit(symbol string, state model.RelativeStrengthState) error {
	if e.persist != nil {
		if err := e.persist.SaveRelativeStrengthState(symbol, state); err != nil {
			return fmt.Errorf("persist rs state for %s: %w", symbol, err)
		}
	}
	*e.states[symbol] = state
	return nil
}
