package strategy

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/calculator"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

const (
	// minSnapshots is the minimum history length before any analysis runs.
	minSnapshots = 5

	// minSeriesValues is the minimum number of weekly and monthly values a
	// sector needs to be evaluable.
	minSeriesValues = 5

	zHighConfidence   = 2.0
	zMediumConfidence = 1.5
)

// SectorRotationAnalyzer derives z-score anomaly signals from the sector
// snapshot history. Only HIGH confidence signals are emitted; MEDIUM is
// computed but filtered to keep alert noise down.
type SectorRotationAnalyzer struct {
	logger zerolog.Logger
}

// NewSectorRotationAnalyzer creates an analyzer.
func NewSectorRotationAnalyzer() *SectorRotationAnalyzer {
	return &SectorRotationAnalyzer{
		logger: log.With().Str("component", "sector_rotation").Logger(),
	}
}

// Analyze evaluates the latest snapshot against the statistics of the whole
// history (latest included). Sectors whose weekly and monthly z-scores
// disagree in sign are discarded as non-actionable.
func (a *SectorRotationAnalyzer) Analyze(snapshots []model.SectorSnapshot) []model.SectorRotationSignal {
	if len(snapshots) < minSnapshots {
		return nil
	}

	latest := snapshots[len(snapshots)-1]
	var signals []model.SectorRotationSignal

	for _, current := range latest.Performances {
		if current.ChangeWeek == nil || current.ChangeMonth == nil {
			continue
		}

		weekly, monthly := seriesFor(snapshots, current.Sector)
		if len(weekly) < minSeriesValues || len(monthly) < minSeriesValues {
			continue
		}

		weeklyStd := calculator.SampleStdDev(weekly)
		monthlyStd := calculator.SampleStdDev(monthly)
		if weeklyStd == 0 || monthlyStd == 0 {
			continue
		}

		zWeekly := calculator.ZScore(*current.ChangeWeek, calculator.Mean(weekly), weeklyStd)
		zMonthly := calculator.ZScore(*current.ChangeMonth, calculator.Mean(monthly), monthlyStd)

		// Diverging weekly/monthly signals are not actionable.
		if (zWeekly >= 0) != (zMonthly >= 0) {
			continue
		}

		confidence, ok := tierConfidence(zWeekly, zMonthly)
		if !ok {
			continue
		}

		direction := model.RotatingOut
		if zWeekly > 0 {
			direction = model.RotatingIn
		}

		signal := model.SectorRotationSignal{
			Sector:        current.Sector,
			Direction:     direction,
			WeeklyChange:  *current.ChangeWeek,
			MonthlyChange: *current.ChangeMonth,
			ZScoreWeekly:  zWeekly,
			ZScoreMonthly: zMonthly,
			Confidence:    confidence,
		}

		// Single policy point: only HIGH confidence goes out.
		if confidence != model.ConfidenceHigh {
			a.logger.Debug().
				Str("sector", current.Sector).
				Str("confidence", string(confidence)).
				Msg("rotation signal below emission threshold")
			continue
		}

		a.logger.Info().
			Str("sector", current.Sector).
			Str("direction", string(direction)).
			Float64("z_weekly", zWeekly).
			Float64("z_monthly", zMonthly).
			Msg("sector rotation signal")
		signals = append(signals, signal)
	}

	return signals
}

// tierConfidence maps the z-score pair to a confidence tier. Anything below
// MEDIUM is discarded.
func tierConfidence(zWeekly, zMonthly float64) (model.Confidence, bool) {
	aw, am := math.Abs(zWeekly), math.Abs(zMonthly)
	switch {
	case aw >= zHighConfidence && am >= zHighConfidence:
		return model.ConfidenceHigh, true
	case aw >= zHighConfidence || am >= zHighConfidence:
		return model.ConfidenceMedium, true
	case aw >= zMediumConfidence && am >= zMediumConfidence:
		return model.ConfidenceMedium, true
	}
	return "", false
}

// seriesFor gathers the sector's weekly and monthly values across the whole
// history, skipping snapshots where the horizon is missing.
func seriesFor(snapshots []model.SectorSnapshot, sector string) (weekly, monthly []float64) {
	for _, snap := range snapshots {
		for _, perf := range snap.Performances {
			if perf.Sector != sector {
				continue
			}
			if perf.ChangeWeek != nil {
				weekly = append(weekly, *perf.ChangeWeek)
			}
			if perf.ChangeMonth != nil {
				monthly = append(monthly, *perf.ChangeMonth)
			}
		}
	}
	return weekly, monthly
}
