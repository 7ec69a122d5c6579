package history

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

const (
	// WindowCap bounds each symbol's rolling window; the oldest point is
	// evicted on overflow.
	WindowCap = 200

	// holidayEpsilon: a new price this close to the previous close on a
	// different day is treated as a stale echo of a non-trading day and
	// dropped. Legitimate flat closes are indistinguishable under this rule.
	holidayEpsilon = 1e-4
)

// Persister durably stores a symbol's price window after every mutation.
type Persister interface {
	SavePriceWindow(symbol string, window []model.PricePoint) error
}

// Store keeps bounded per-symbol rolling windows of daily closing prices.
// Windows are kept sorted ascending by date with at most one point per day.
type Store struct {
	mu      sync.Mutex
	windows map[string][]model.PricePoint
	persist Persister
	logger  zerolog.Logger
}

// NewStore creates a Store seeded with previously persisted windows. The seed
// map is copied; the caller keeps ownership of its argument.
func NewStore(seed map[string][]model.PricePoint, persist Persister) *Store {
	windows := make(map[string][]model.PricePoint, len(seed))
	for sym, w := range seed {
		cp := append([]model.PricePoint(nil), w...)
		sortByDate(cp)
		windows[sym] = cp
	}
	return &Store{
		windows: windows,
		persist: persist,
		logger:  log.With().Str("component", "price_history").Logger(),
	}
}

// Add records a closing price for (symbol, date). An existing point for the
// same date is overwritten. A price within holidayEpsilon of the most recent
// stored price on a different date is silently dropped as a holiday echo.
// Returns whether the window changed; a persistence failure propagates and
// leaves the in-memory window unmodified.
func (s *Store) Add(symbol string, price float64, date time.Time) (bool, error) {
	day := model.Day(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[symbol]

	// Same-day update: overwrite in place.
	for i, p := range window {
		if p.Date.Equal(day) {
			if p.Price == price {
				return false, nil
			}
			next := append([]model.PricePoint(nil), window...)
			next[i].Price = price
			return true, s.commit(symbol, next)
		}
	}

	// Holiday guard against the most recent stored point.
	if n := len(window); n > 0 {
		last := window[n-1]
		if math.Abs(last.Price-price) < holidayEpsilon && !last.Date.Equal(day) {
			s.logger.Debug().
				Str("symbol", symbol).
				Float64("price", price).
				Msg("dropping likely holiday echo")
			return false, nil
		}
	}

	next := append(append([]model.PricePoint(nil), window...), model.PricePoint{Date: day, Price: price})
	sortByDate(next)
	if len(next) > WindowCap {
		next = next[len(next)-WindowCap:]
	}
	return true, s.commit(symbol, next)
}

// commit persists the window then swaps it in. Holding back the in-memory
// swap until the write succeeded keeps state consistent when a pass is
// aborted mid-flight.
func (s *Store) commit(symbol string, window []model.PricePoint) error {
	if s.persist != nil {
		if err := s.persist.SavePriceWindow(symbol, window); err != nil {
			return fmt.Errorf("persist window for %s: %w", symbol, err)
		}
	}
	s.windows[symbol] = window
	return nil
}

// Window returns a copy of the symbol's window, sorted ascending by date.
func (s *Store) Window(symbol string) []model.PricePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PricePoint(nil), s.windows[symbol]...)
}

// Latest returns the most recent stored point for the symbol, if any.
func (s *Store) Latest(symbol string) (model.PricePoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	window := s.windows[symbol]
	if len(window) == 0 {
		return model.PricePoint{}, false
	}
	return window[len(window)-1], true
}

// LastBefore returns the most recent stored point strictly before date's
// calendar day, skipping past a same-day entry if one exists. This is the
// reference close for intraday change calculations.
func (s *Store) LastBefore(symbol string, date time.Time) (model.PricePoint, bool) {
	day := model.Day(date)
	s.mu.Lock()
	defer s.mu.Unlock()
	window := s.windows[symbol]
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Date.Before(day) {
			return window[i], true
		}
	}
	return model.PricePoint{}, false
}

func sortByDate(points []model.PricePoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
}
