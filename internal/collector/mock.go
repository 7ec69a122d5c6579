package collector

import (
	"context"
	"fmt"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices     map[string]float64
	Industries []model.IndustrySnapshot
	Err        error
	Calls      []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchLatestPrice(_ context.Context, symbol string) (float64, error) {
	m.Calls = append(m.Calls, symbol)
	if m.Err != nil {
		return 0, m.Err
	}
	price, ok := m.Prices[symbol]
	if !ok {
		return 0, fmt.Errorf("mock: no price for %s", symbol)
	}
	return price, nil
}

func (m *MockFetcher) FetchIndustryPerformance(_ context.Context) ([]model.IndustrySnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Industries, nil
}
