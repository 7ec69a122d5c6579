package history

import (
	"errors"
	"testing"
	"time"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func TestStore_HolidayGuard(t *testing.T) {
	s := NewStore(nil, nil)

	changed, err := s.Add("AAPL", 100.00, day(1))
	if err != nil || !changed {
		t.Fatalf("first add: changed=%v err=%v", changed, err)
	}

	// Same price on a later day: likely holiday echo, silently dropped.
	changed, err = s.Add("AAPL", 100.00, day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected holiday echo to be dropped")
	}
	window := s.Window("AAPL")
	if len(window) != 1 || !window[0].Date.Equal(day(1)) {
		t.Fatalf("expected window [day1], got %v", window)
	}

	// A genuinely different close on the later day is accepted.
	changed, err = s.Add("AAPL", 100.01, day(3))
	if err != nil || !changed {
		t.Fatalf("distinct price: changed=%v err=%v", changed, err)
	}
	if got := len(s.Window("AAPL")); got != 2 {
		t.Errorf("expected window length 2, got %d", got)
	}
}

func TestStore_SameDayOverwrite(t *testing.T) {
	s := NewStore(nil, nil)
	if _, err := s.Add("AAPL", 100, day(1)); err != nil {
		t.Fatal(err)
	}
	changed, err := s.Add("AAPL", 105, day(1))
	if err != nil || !changed {
		t.Fatalf("overwrite: changed=%v err=%v", changed, err)
	}
	window := s.Window("AAPL")
	if len(window) != 1 {
		t.Fatalf("expected single point, got %d", len(window))
	}
	if window[0].Price != 105 {
		t.Errorf("expected price 105 after overwrite, got %.2f", window[0].Price)
	}

	// Identical same-day re-add is a no-op.
	changed, err = s.Add("AAPL", 105, day(1))
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("expected identical same-day add to be a no-op")
	}
}

func TestStore_CapEviction(t *testing.T) {
	s := NewStore(nil, nil)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < WindowCap+5; i++ {
		if _, err := s.Add("AAPL", 100+float64(i), base.AddDate(0, 0, i)); err != nil {
			t.Fatal(err)
		}
	}
	window := s.Window("AAPL")
	if len(window) != WindowCap {
		t.Fatalf("expected window capped at %d, got %d", WindowCap, len(window))
	}
	if !window[0].Date.Equal(base.AddDate(0, 0, 5)) {
		t.Errorf("expected oldest 5 points evicted, oldest is %v", window[0].Date)
	}
}

func TestStore_WindowSortedAscending(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add("AAPL", 103, day(3))
	s.Add("AAPL", 101, day(1))
	s.Add("AAPL", 102, day(2))

	window := s.Window("AAPL")
	for i := 1; i < len(window); i++ {
		if !window[i-1].Date.Before(window[i].Date) {
			t.Fatalf("window not sorted ascending: %v", window)
		}
	}
}

type failingPersister struct{ err error }

func (f *failingPersister) SavePriceWindow(string, []model.PricePoint) error { return f.err }

func TestStore_PersistFailureLeavesWindowUntouched(t *testing.T) {
	s := NewStore(nil, &failingPersister{err: errors.New("disk full")})
	if _, err := s.Add("AAPL", 100, day(1)); err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if got := len(s.Window("AAPL")); got != 0 {
		t.Errorf("expected window untouched after failed persist, got %d points", got)
	}
}

func TestStore_SeedIsCopied(t *testing.T) {
	seed := map[string][]model.PricePoint{
		"AAPL": {{Date: day(2), Price: 102}, {Date: day(1), Price: 101}},
	}
	s := NewStore(seed, nil)

	window := s.Window("AAPL")
	if len(window) != 2 {
		t.Fatalf("expected 2 seeded points, got %d", len(window))
	}
	if !window[0].Date.Equal(day(1)) {
		t.Error("expected seed re-sorted ascending by date")
	}

	// Mutating the returned copy must not affect the store.
	window[0].Price = 999
	if s.Window("AAPL")[0].Price == 999 {
		t.Error("Window must return a copy")
	}
}

func TestStore_LastBefore(t *testing.T) {
	s := NewStore(nil, nil)
	if _, ok := s.LastBefore("AAPL", day(5)); ok {
		t.Error("expected no prior point for empty window")
	}

	s.Add("AAPL", 100, day(1))
	s.Add("AAPL", 102, day(3))
	s.Add("AAPL", 110, day(5))

	// The same-day point is skipped; the prior day's close is returned.
	prev, ok := s.LastBefore("AAPL", day(5))
	if !ok || !prev.Date.Equal(day(3)) || prev.Price != 102 {
		t.Errorf("unexpected prior point: %+v ok=%v", prev, ok)
	}

	// With only a same-day point there is no reference close.
	s2 := NewStore(nil, nil)
	s2.Add("AAPL", 100, day(5))
	if _, ok := s2.LastBefore("AAPL", day(5)); ok {
		t.Error("expected no prior point when only today is stored")
	}
}

func TestStore_Latest(t *testing.T) {
	s := NewStore(nil, nil)
	if _, ok := s.Latest("AAPL"); ok {
		t.Error("expected no latest for unknown symbol")
	}
	s.Add("AAPL", 100, day(1))
	s.Add("AAPL", 102, day(2))
	last, ok := s.Latest("AAPL")
	if !ok || !last.Date.Equal(day(2)) || last.Price != 102 {
		t.Errorf("unexpected latest: %+v ok=%v", last, ok)
	}
}
