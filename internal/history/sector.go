package history

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// SnapshotCap bounds the retained sector snapshot history to 60 days; the
// oldest snapshot is dropped first.
const SnapshotCap = 60

// SnapshotPersister durably stores the full snapshot history after every
// mutation.
type SnapshotPersister interface {
	SaveSectorSnapshots(snapshots []model.SectorSnapshot) error
}

// SectorHistory is the append-only list of daily sector performance
// snapshots, keyed by fetch date with at most one snapshot per day.
type SectorHistory struct {
	mu        sync.Mutex
	snapshots []model.SectorSnapshot
	persist   SnapshotPersister
	logger    zerolog.Logger
}

// NewSectorHistory creates a SectorHistory seeded with previously persisted
// snapshots.
func NewSectorHistory(seed []model.SectorSnapshot, persist SnapshotPersister) *SectorHistory {
	snapshots := append([]model.SectorSnapshot(nil), seed...)
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].FetchDate.Before(snapshots[j].FetchDate)
	})
	return &SectorHistory{
		snapshots: snapshots,
		persist:   persist,
		logger:    log.With().Str("component", "sector_history").Logger(),
	}
}

// Add stores a snapshot. A snapshot for an already-present fetch date
// replaces the stored one; beyond SnapshotCap days the oldest is dropped.
// A persistence failure propagates and leaves the in-memory history
// unmodified.
func (h *SectorHistory) Add(snapshot model.SectorSnapshot) error {
	snapshot.FetchDate = model.Day(snapshot.FetchDate)

	h.mu.Lock()
	defer h.mu.Unlock()

	next := append([]model.SectorSnapshot(nil), h.snapshots...)
	replaced := false
	for i, s := range next {
		if s.FetchDate.Equal(snapshot.FetchDate) {
			next[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, snapshot)
		sort.Slice(next, func(i, j int) bool { return next[i].FetchDate.Before(next[j].FetchDate) })
	}
	if len(next) > SnapshotCap {
		next = next[len(next)-SnapshotCap:]
	}

	if h.persist != nil {
		if err := h.persist.SaveSectorSnapshots(next); err != nil {
			return fmt.Errorf("persist sector snapshots: %w", err)
		}
	}
	h.snapshots = next
	h.logger.Debug().Int("retained", len(next)).Bool("replaced", replaced).Msg("sector snapshot stored")
	return nil
}

// All returns a chronological copy of the retained snapshots.
func (h *SectorHistory) All() []model.SectorSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.SectorSnapshot(nil), h.snapshots...)
}

// Len returns the number of retained snapshots.
func (h *SectorHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}
