package strategy

import (
	"testing"
	"time"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

func snapshotSeries(sector string, weekly, monthly []float64) []model.SectorSnapshot {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	snapshots := make([]model.SectorSnapshot, len(weekly))
	for i := range weekly {
		snapshots[i] = model.SectorSnapshot{
			FetchDate: base.AddDate(0, 0, i),
			Performances: []model.IndustrySnapshot{
				{
					Sector:      sector,
					ChangeWeek:  model.Float(weekly[i]),
					ChangeMonth: model.Float(monthly[i]),
				},
			},
		}
	}
	return snapshots
}

func TestSectorRotation_TooFewSnapshots(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	snapshots := snapshotSeries("Technology", []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	if got := analyzer.Analyze(snapshots); got != nil {
		t.Errorf("expected nil with %d snapshots, got %d signals", len(snapshots), len(got))
	}
}

func TestSectorRotation_ZeroVarianceStaysSilent(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	weekly := []float64{2, 2, 2, 2, 2, 2}
	monthly := []float64{3, 3, 3, 3, 3, 3}
	if got := analyzer.Analyze(snapshotSeries("Energy", weekly, monthly)); got != nil {
		t.Errorf("expected no signals on flat history, got %d", len(got))
	}
}

func TestSectorRotation_SpikeEmitsHighConfidence(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	weekly := []float64{1.8, 2.1, 1.9, 2.2, 2.0, 15}
	monthly := []float64{3.1, 2.9, 3.0, 3.2, 2.8, 25}

	signals := analyzer.Analyze(snapshotSeries("Technology", weekly, monthly))
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	sig := signals[0]
	if sig.Sector != "Technology" {
		t.Errorf("expected sector Technology, got %s", sig.Sector)
	}
	if sig.Direction != model.RotatingIn {
		t.Errorf("expected ROTATING_IN, got %s", sig.Direction)
	}
	if sig.Confidence != model.ConfidenceHigh {
		t.Errorf("expected HIGH confidence, got %s", sig.Confidence)
	}
	if sig.ZScoreWeekly < zHighConfidence || sig.ZScoreMonthly < zHighConfidence {
		t.Errorf("expected both z-scores above %.1f, got %.4f / %.4f",
			zHighConfidence, sig.ZScoreWeekly, sig.ZScoreMonthly)
	}
}

func TestSectorRotation_NegativeSpikeRotatesOut(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	weekly := []float64{1.8, 2.1, 1.9, 2.2, 2.0, -15}
	monthly := []float64{3.1, 2.9, 3.0, 3.2, 2.8, -25}

	signals := analyzer.Analyze(snapshotSeries("Utilities", weekly, monthly))
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Direction != model.RotatingOut {
		t.Errorf("expected ROTATING_OUT, got %s", signals[0].Direction)
	}
}

func TestSectorRotation_DivergingHorizonsDiscarded(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	weekly := []float64{1.8, 2.1, 1.9, 2.2, 2.0, 15}
	monthly := []float64{3.1, 2.9, 3.0, 3.2, 2.8, -25}

	if got := analyzer.Analyze(snapshotSeries("Financials", weekly, monthly)); got != nil {
		t.Errorf("expected diverging z-scores discarded, got %d signals", len(got))
	}
}

func TestSectorRotation_MediumConfidenceFiltered(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	// z is about 1.87 on both horizons, MEDIUM tier.
	series := []float64{1, 2, 3, 1, 2, 6}

	if got := analyzer.Analyze(snapshotSeries("Materials", series, series)); got != nil {
		t.Errorf("expected MEDIUM confidence filtered, got %d signals", len(got))
	}
}

func TestSectorRotation_MissingHorizonSkipped(t *testing.T) {
	analyzer := NewSectorRotationAnalyzer()
	snapshots := snapshotSeries("Industrials", []float64{1.8, 2.1, 1.9, 2.2, 2.0, 15},
		[]float64{3.1, 2.9, 3.0, 3.2, 2.8, 25})
	snapshots[len(snapshots)-1].Performances[0].ChangeMonth = nil

	if got := analyzer.Analyze(snapshots); got != nil {
		t.Errorf("expected sector without monthly value skipped, got %d signals", len(got))
	}
}

func TestTierConfidence(t *testing.T) {
	tests := []struct {
		zWeekly, zMonthly float64
		want              model.Confidence
		ok                bool
	}{
		{2.1, 2.1, model.ConfidenceHigh, true},
		{2.5, 1.6, model.ConfidenceMedium, true},
		{1.6, 2.5, model.ConfidenceMedium, true},
		{1.6, 1.6, model.ConfidenceMedium, true},
		{1.4, 1.6, "", false},
		{0.5, 0.5, "", false},
	}
	for _, tt := range tests {
		got, ok := tierConfidence(tt.zWeekly, tt.zMonthly)
		if got != tt.want || ok != tt.ok {
			t.Errorf("tierConfidence(%.1f, %.1f) = %s,%v, expected %s,%v",
				tt.zWeekly, tt.zMonthly, got, ok, tt.want, tt.ok)
		}
	}
}
