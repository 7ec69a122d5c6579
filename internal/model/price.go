package model

import "time"

// PricePoint is a single (date, value) observation. The same struct carries
// raw closing prices and derived ratios; Date is always a UTC calendar day.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Day truncates t to its UTC calendar date. All window bookkeeping keys on
// days, never on intraday timestamps.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TargetPrice holds the operator-configured buy/sell thresholds for one
// symbol. A zero value means the corresponding side is not armed.
type TargetPrice struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Buy    float64 `yaml:"buy" json:"buy"`
	Sell   float64 `yaml:"sell" json:"sell"`
}

// RelativeStrengthState is the per-symbol carry-over between relative
// strength evaluations. Crossover detection compares the current ratio/EMA
// pair against the previous evaluation's pair, so the state must survive
// restarts.
type RelativeStrengthState struct {
	RatioWindow []PricePoint `json:"ratio_window"`
	PrevRatio   float64      `json:"prev_ratio"`
	PrevEma     float64      `json:"prev_ema"`
	Initialized bool         `json:"initialized"`
}
