package cooldown

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// key addresses one suppression slot. Bucket is 0 for plain reasons and the
// threshold tier (5, 10, 15, ...) for volatility alerts, so each tier is an
// independent re-arm point.
type key struct {
	Reason model.AlertReason
	Bucket int
}

// Tracker is the in-memory ignore registry. An armed key suppresses the
// matching alert until its ttl elapses; the periodic sweep reclaims expired
// entries. State is intentionally not persisted; cooldowns resetting on
// restart is accepted.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]map[key]time.Time
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// NewTracker creates an empty Tracker whose entries expire after ttl.
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		entries: make(map[string]map[key]time.Time),
		ttl:     ttl,
		now:     time.Now,
		logger:  log.With().Str("component", "cooldown").Logger(),
	}
}

// IsIgnored reports whether (symbol, reason) has an unexpired entry.
func (t *Tracker) IsIgnored(symbol string, reason model.AlertReason) bool {
	return t.IsIgnoredBucket(symbol, reason, 0)
}

// IsIgnoredBucket reports whether (symbol, reason, bucket) has an unexpired
// entry. An entry past its ttl no longer suppresses even before a sweep has
// reclaimed it. Buckets only partition volatility alerts; plain reasons use 0.
func (t *Tracker) IsIgnoredBucket(symbol string, reason model.AlertReason, bucket int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	reasons, ok := t.entries[symbol]
	if !ok {
		return false
	}
	armedAt, armed := reasons[key{Reason: reason, Bucket: bucket}]
	return armed && t.now().Sub(armedAt) < t.ttl
}

// Arm records the suppression timestamp for (symbol, reason). Re-arming an
// already armed key refreshes its timestamp.
func (t *Tracker) Arm(symbol string, reason model.AlertReason) {
	t.ArmBucket(symbol, reason, 0)
}

// ArmBucket records the suppression timestamp for (symbol, reason, bucket).
func (t *Tracker) ArmBucket(symbol string, reason model.AlertReason, bucket int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	reasons, ok := t.entries[symbol]
	if !ok {
		reasons = make(map[key]time.Time)
		t.entries[symbol] = reasons
	}
	reasons[key{Reason: reason, Bucket: bucket}] = t.now()
}

// Sweep removes every entry whose ttl has elapsed, then removes symbols left
// with no entries. An entry exactly ttl old counts as expired. Expiry is
// judged against the timestamps present at sweep time, so an Arm racing the
// sweep is never deleted fresh. Returns the number of entries removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	removed := 0
	for symbol, reasons := range t.entries {
		for k, armedAt := range reasons {
			if !armedAt.After(cutoff) {
				delete(reasons, k)
				removed++
			}
		}
		if len(reasons) == 0 {
			delete(t.entries, symbol)
		}
	}
	if removed > 0 {
		t.logger.Debug().Int("removed", removed).Msg("cooldown sweep")
	}
	return removed
}

// ActiveCount returns the number of currently armed entries across all
// symbols.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, reasons := range t.entries {
		n += len(reasons)
	}
	return n
}
