package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

type capturingPersister struct {
	states map[string]model.RelativeStrengthState
}

func (c *capturingPersister) SaveRelativeStrengthState(symbol string, state model.RelativeStrengthState) error {
	if c.states == nil {
		c.states = make(map[string]model.RelativeStrengthState)
	}
	c.states[symbol] = state
	return nil
}

func windowOf(prices []float64) []model.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		window[i] = model.PricePoint{Date: base.AddDate(0, 0, i), Price: p}
	}
	return window
}

func constantPrices(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRelativeStrength_ConstantRatioNeverCrosses(t *testing.T) {
	store := history.NewStore(map[string][]model.PricePoint{
		"AAPL": windowOf(constantPrices(60, 100)),
		"SPY":  windowOf(constantPrices(60, 100)),
	}, nil)
	persist := &capturingPersister{}
	engine := NewRelativeStrengthEngine("SPY", store, nil, persist)

	// First evaluation only seeds state.
	if _, emitted, err := engine.Evaluate("AAPL"); err != nil || emitted {
		t.Fatalf("first evaluation: emitted=%v err=%v", emitted, err)
	}

	state := persist.states["AAPL"]
	if !state.Initialized {
		t.Fatal("expected state initialized after first evaluation")
	}
	if math.Abs(state.PrevRatio-1.0) > 1e-9 {
		t.Errorf("expected constant ratio 1.0, got %.6f", state.PrevRatio)
	}
	if math.Abs(state.PrevEma-1.0) > 1e-3 {
		t.Errorf("expected EMA within 1e-3 of 1.0, got %.6f", state.PrevEma)
	}

	// Nothing moves, so no crossover can ever fire.
	for i := 0; i < 3; i++ {
		if _, emitted, err := engine.Evaluate("AAPL"); err != nil || emitted {
			t.Fatalf("evaluation %d: emitted=%v err=%v", i+2, emitted, err)
		}
	}
}

func TestRelativeStrength_CrossUpEmitsOutperforming(t *testing.T) {
	// 49 days at ratio 0.8, then a jump to parity.
	stock := constantPrices(50, 80)
	stock[49] = 100
	store := history.NewStore(map[string][]model.PricePoint{
		"AAPL": windowOf(stock),
		"SPY":  windowOf(constantPrices(50, 100)),
	}, nil)
	seed := map[string]model.RelativeStrengthState{
		"AAPL": {PrevRatio: 0.8, PrevEma: 0.85, Initialized: true},
	}
	engine := NewRelativeStrengthEngine("SPY", store, seed, &capturingPersister{})

	sig, emitted, err := engine.Evaluate("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emitted {
		t.Fatal("expected a crossover signal")
	}
	if sig.Direction != model.RsOutperforming {
		t.Errorf("expected OUTPERFORMING, got %s", sig.Direction)
	}
	if math.Abs(sig.Ratio-1.0) > 1e-9 {
		t.Errorf("expected ratio 1.0, got %.6f", sig.Ratio)
	}
	if sig.Ema >= 1.0 {
		t.Errorf("expected EMA below parity, got %.6f", sig.Ema)
	}
	if sig.PercentDiff <= 0 {
		t.Errorf("expected positive percent diff, got %.4f", sig.PercentDiff)
	}
}

func TestRelativeStrength_CrossDownEmitsUnderperforming(t *testing.T) {
	stock := constantPrices(50, 120)
	stock[49] = 80
	store := history.NewStore(map[string][]model.PricePoint{
		"AAPL": windowOf(stock),
		"SPY":  windowOf(constantPrices(50, 100)),
	}, nil)
	seed := map[string]model.RelativeStrengthState{
		"AAPL": {PrevRatio: 1.2, PrevEma: 1.15, Initialized: true},
	}
	engine := NewRelativeStrengthEngine("SPY", store, seed, &capturingPersister{})

	sig, emitted, err := engine.Evaluate("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emitted {
		t.Fatal("expected a crossover signal")
	}
	if sig.Direction != model.RsUnderperforming {
		t.Errorf("expected UNDERPERFORMING, got %s", sig.Direction)
	}
}

func TestRelativeStrength_TooFewRatiosRecordsButStaysSilent(t *testing.T) {
	store := history.NewStore(map[string][]model.PricePoint{
		"AAPL": windowOf(constantPrices(20, 100)),
		"SPY":  windowOf(constantPrices(20, 100)),
	}, nil)
	persist := &capturingPersister{}
	engine := NewRelativeStrengthEngine("SPY", store, nil, persist)

	if _, emitted, err := engine.Evaluate("AAPL"); err != nil || emitted {
		t.Fatalf("emitted=%v err=%v", emitted, err)
	}
	state := persist.states["AAPL"]
	if len(state.RatioWindow) != 20 {
		t.Errorf("expected 20 recorded ratio points, got %d", len(state.RatioWindow))
	}
	if state.Initialized {
		t.Error("state must not initialize before the EMA window fills")
	}
}

func TestRelativeStrength_BenchmarkExcluded(t *testing.T) {
	store := history.NewStore(map[string][]model.PricePoint{
		"SPY": windowOf(constantPrices(60, 100)),
	}, nil)
	engine := NewRelativeStrengthEngine("SPY", store, nil, &capturingPersister{})

	if _, emitted, err := engine.Evaluate("SPY"); err != nil || emitted {
		t.Errorf("benchmark must never evaluate: emitted=%v err=%v", emitted, err)
	}
}

func TestRelativeStrength_SkipsNonPositiveBenchmarkPrices(t *testing.T) {
	bench := constantPrices(60, 100)
	bench[10] = 0
	store := history.NewStore(map[string][]model.PricePoint{
		"AAPL": windowOf(constantPrices(60, 100)),
		"SPY":  windowOf(bench),
	}, nil)
	persist := &capturingPersister{}
	engine := NewRelativeStrengthEngine("SPY", store, nil, persist)

	if _, _, err := engine.Evaluate("AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(persist.states["AAPL"].RatioWindow); got != 59 {
		t.Errorf("expected the zero-benchmark day skipped, got %d ratio points", got)
	}
}
