package strategy

import (
	"testing"
	"time"

	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

func seededStore(t *testing.T, symbol string, prices []float64) *history.Store {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		window[i] = model.PricePoint{Date: base.AddDate(0, 0, i), Price: p}
	}
	return history.NewStore(map[string][]model.PricePoint{symbol: window}, nil)
}

func TestRsiEngine_Overbought(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	engine := NewRsiEngine(seededStore(t, "AAPL", prices))

	sig, ok := engine.Evaluate("AAPL")
	if !ok {
		t.Fatal("expected a signal for monotonically increasing prices")
	}
	if sig.Zone != model.RsiOverbought {
		t.Errorf("expected OVERBOUGHT, got %s", sig.Zone)
	}
	if sig.Value != 100 {
		t.Errorf("expected RSI 100, got %.2f", sig.Value)
	}
}

func TestRsiEngine_Oversold(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	engine := NewRsiEngine(seededStore(t, "AAPL", prices))

	sig, ok := engine.Evaluate("AAPL")
	if !ok {
		t.Fatal("expected a signal for monotonically decreasing prices")
	}
	if sig.Zone != model.RsiOversold {
		t.Errorf("expected OVERSOLD, got %s", sig.Zone)
	}
}

func TestRsiEngine_NoSignalWithoutEnoughData(t *testing.T) {
	// 14 points: the calculation refuses, no signal and no alert.
	prices := make([]float64, 14)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	engine := NewRsiEngine(seededStore(t, "AAPL", prices))
	if _, ok := engine.Evaluate("AAPL"); ok {
		t.Error("expected no signal for 14 points")
	}

	// Far fewer points: neutral default, still no signal.
	engine = NewRsiEngine(seededStore(t, "AAPL", []float64{100, 101}))
	if _, ok := engine.Evaluate("AAPL"); ok {
		t.Error("expected no signal for neutral default")
	}
}

func TestRsiEngine_NeutralZoneSilent(t *testing.T) {
	// Alternating moves keep the RSI in the neutral band.
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
		if i%2 == 0 {
			prices[i] = 101
		}
	}
	engine := NewRsiEngine(seededStore(t, "AAPL", prices))
	if sig, ok := engine.Evaluate("AAPL"); ok {
		t.Errorf("expected no signal in neutral zone, got %+v", sig)
	}
}
