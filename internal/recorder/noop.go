package recorder

import "github.com/lelsaesser/tradebot-sub000/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
// Everything runs memory-only; crossover state is lost on restart.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SavePriceWindow(_ string, _ []model.PricePoint) error { return nil }

func (n *NoopRecorder) PriceWindows() (map[string][]model.PricePoint, error) {
	return map[string][]model.PricePoint{}, nil
}

func (n *NoopRecorder) SaveRelativeStrengthState(_ string, _ model.RelativeStrengthState) error {
	return nil
}

func (n *NoopRecorder) RelativeStrengthStates() (map[string]model.RelativeStrengthState, error) {
	return map[string]model.RelativeStrengthState{}, nil
}

func (n *NoopRecorder) SaveSectorSnapshots(_ []model.SectorSnapshot) error { return nil }

func (n *NoopRecorder) SectorSnapshots() ([]model.SectorSnapshot, error) { return nil, nil }

func (n *NoopRecorder) RecordAlert(_ model.Alert) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
