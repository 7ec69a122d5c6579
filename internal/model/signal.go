package model

// RsiZone classifies an RSI reading.
type RsiZone string

const (
	RsiOverbought RsiZone = "OVERBOUGHT"
	RsiOversold   RsiZone = "OVERSOLD"
)

// RsiSignal is emitted when a symbol's RSI enters an actionable zone.
type RsiSignal struct {
	Symbol string
	Value  float64
	Zone   RsiZone
}

// RsDirection is the side of a relative strength crossover.
type RsDirection string

const (
	RsOutperforming   RsDirection = "OUTPERFORMING"
	RsUnderperforming RsDirection = "UNDERPERFORMING"
)

// RelativeStrengthSignal is emitted when a symbol's price ratio against the
// benchmark crosses its 50-period EMA.
type RelativeStrengthSignal struct {
	Symbol      string
	Direction   RsDirection
	Ratio       float64
	Ema         float64
	PercentDiff float64
}

// RotationDirection is the side of a sector rotation signal.
type RotationDirection string

const (
	RotatingIn  RotationDirection = "ROTATING_IN"
	RotatingOut RotationDirection = "ROTATING_OUT"
)

// Confidence tiers a rotation signal by z-score magnitude.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
)

// SectorRotationSignal is a statistically unusual sector move.
type SectorRotationSignal struct {
	Sector        string
	Direction     RotationDirection
	WeeklyChange  float64
	MonthlyChange float64
	ZScoreWeekly  float64
	ZScoreMonthly float64
	Confidence    Confidence
}
