package collector

import (
	"context"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// PriceFetcher fetches the latest traded price for a symbol.
type PriceFetcher interface {
	FetchLatestPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}

// SectorPerformanceFetcher fetches the current industry performance table.
type SectorPerformanceFetcher interface {
	FetchIndustryPerformance(ctx context.Context) ([]model.IndustrySnapshot, error)
}
