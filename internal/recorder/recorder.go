package recorder

import "github.com/lelsaesser/tradebot-sub000/internal/model"

// Recorder persists the engine state that must survive restarts: per-symbol
// price windows, relative strength state, sector snapshot history, and the
// log of emitted alerts. Cooldowns are deliberately not persisted.
type Recorder interface {
	SavePriceWindow(symbol string, window []model.PricePoint) error
	PriceWindows() (map[string][]model.PricePoint, error)

	SaveRelativeStrengthState(symbol string, state model.RelativeStrengthState) error
	RelativeStrengthStates() (map[string]model.RelativeStrengthState, error)

	SaveSectorSnapshots(snapshots []model.SectorSnapshot) error
	SectorSnapshots() ([]model.SectorSnapshot, error)

	RecordAlert(alert model.Alert) error

	Close() error
}
