package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_PriceWindowRoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	day1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	window := []model.PricePoint{
		{Date: day1, Price: 100.5},
		{Date: day1.AddDate(0, 0, 1), Price: 101.25},
	}

	if err := r.SavePriceWindow("AAPL", window); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A second save fully replaces the first.
	if err := r.SavePriceWindow("AAPL", window[1:]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	windows, err := r.PriceWindows()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := windows["AAPL"]
	if len(got) != 1 {
		t.Fatalf("expected 1 point after replace, got %d", len(got))
	}
	if got[0].Price != 101.25 || !got[0].Date.Equal(window[1].Date) {
		t.Errorf("unexpected point %+v", got[0])
	}
}

func TestSQLiteRecorder_RelativeStrengthStateRoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	state := model.RelativeStrengthState{
		RatioWindow: []model.PricePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 1.02},
		},
		PrevRatio:   1.02,
		PrevEma:     0.99,
		Initialized: true,
	}

	if err := r.SaveRelativeStrengthState("AAPL", model.RelativeStrengthState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Upsert overwrites the earlier row.
	if err := r.SaveRelativeStrengthState("AAPL", state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states, err := r.RelativeStrengthStates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := states["AAPL"]
	if !ok {
		t.Fatal("expected state for AAPL")
	}
	if !got.Initialized || got.PrevRatio != 1.02 || got.PrevEma != 0.99 {
		t.Errorf("unexpected state %+v", got)
	}
	if len(got.RatioWindow) != 1 || got.RatioWindow[0].Price != 1.02 {
		t.Errorf("unexpected ratio window %+v", got.RatioWindow)
	}
}

func TestSQLiteRecorder_SectorSnapshotRoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	snapshots := []model.SectorSnapshot{
		{
			FetchDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Performances: []model.IndustrySnapshot{
				{Sector: "Technology", ChangeWeek: model.Float(2.5), ChangeMonth: model.Float(4.1)},
			},
		},
		{
			FetchDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Performances: []model.IndustrySnapshot{
				{Sector: "Technology", ChangeWeek: model.Float(-1.2)},
			},
		},
	}

	if err := r.SaveSectorSnapshots(snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.SectorSnapshots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	first := got[0].Performances[0]
	if first.Sector != "Technology" || first.ChangeWeek == nil || *first.ChangeWeek != 2.5 {
		t.Errorf("unexpected performance %+v", first)
	}
	// Missing horizons survive the round trip as nil.
	if got[1].Performances[0].ChangeMonth != nil {
		t.Error("expected nil monthly change to survive round trip")
	}
}

func TestSQLiteRecorder_RecordAlert(t *testing.T) {
	r := openTestRecorder(t)
	alert := model.Alert{
		ID:        "test-id",
		Reason:    model.ReasonBuy,
		Symbol:    "AAPL",
		Price:     95,
		Target:    100,
		CreatedAt: time.Now(),
	}
	if err := r.RecordAlert(alert); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Duplicate IDs violate the primary key.
	if err := r.RecordAlert(alert); err == nil {
		t.Error("expected duplicate alert id rejected")
	}
}
