package targets

import (
	"encoding/json"
	"os"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// bookState is the on-disk form of the target book.
type bookState struct {
	Stocks []model.TargetPrice `json:"stocks"`
	Crypto []model.TargetPrice `json:"crypto"`
}

// loadState reads the book from a JSON file. Returns an empty state if the
// file doesn't exist.
func loadState(filePath string) (*bookState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &bookState{}, nil
		}
		return nil, err
	}
	var state bookState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// saveState writes the book to a JSON file.
func saveState(filePath string, state *bookState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
