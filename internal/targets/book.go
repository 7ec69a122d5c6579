package targets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// Book holds the operator's buy/sell targets per asset class. Config seeds
// the book on first start; runtime changes from chat commands persist to the
// state file and win over config on later starts. Invalid input is rejected
// here so the engines never see it.
type Book struct {
	mu       sync.Mutex
	state    *bookState
	filePath string
	logger   zerolog.Logger
}

// NewBook loads the book from the state file, seeding any symbols from
// config that the file doesn't know yet.
func NewBook(filePath string, stockSeed, cryptoSeed []model.TargetPrice) (*Book, error) {
	state, err := loadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load target book: %w", err)
	}

	state.Stocks = mergeSeed(state.Stocks, stockSeed)
	state.Crypto = mergeSeed(state.Crypto, cryptoSeed)

	b := &Book{
		state:    state,
		filePath: filePath,
		logger:   log.With().Str("component", "target_book").Logger(),
	}
	if err := b.save(); err != nil {
		return nil, err
	}
	return b, nil
}

// mergeSeed appends config entries for symbols the persisted state doesn't
// carry yet. Persisted values are never overwritten by config.
func mergeSeed(existing, seed []model.TargetPrice) []model.TargetPrice {
	known := make(map[string]bool, len(existing))
	for _, tp := range existing {
		known[tp.Symbol] = true
	}
	for _, tp := range seed {
		if tp.Symbol == "" || known[tp.Symbol] {
			continue
		}
		existing = append(existing, tp)
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i].Symbol < existing[j].Symbol })
	return existing
}

// Targets returns a copy of the targets for the asset class.
func (b *Book) Targets(class model.AssetClass) []model.TargetPrice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.TargetPrice(nil), *b.listFor(class)...)
}

// SetBuy updates the buy target for a known symbol. Negative targets and
// unknown symbols are rejected.
func (b *Book) SetBuy(class model.AssetClass, symbol string, target float64) error {
	return b.set(class, symbol, target, true)
}

// SetSell updates the sell target for a known symbol.
func (b *Book) SetSell(class model.AssetClass, symbol string, target float64) error {
	return b.set(class, symbol, target, false)
}

func (b *Book) set(class model.AssetClass, symbol string, target float64, buy bool) error {
	if target < 0 {
		return fmt.Errorf("target price must not be negative, got %.2f", target)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.listFor(class)
	for i := range *list {
		if !strings.EqualFold((*list)[i].Symbol, symbol) {
			continue
		}
		if buy {
			(*list)[i].Buy = target
		} else {
			(*list)[i].Sell = target
		}
		b.logger.Info().Str("symbol", symbol).Float64("target", target).Bool("buy", buy).Msg("target updated")
		return b.save()
	}
	return fmt.Errorf("unknown symbol %q for asset class %s", symbol, class)
}

func (b *Book) listFor(class model.AssetClass) *[]model.TargetPrice {
	if class == model.ClassCrypto {
		return &b.state.Crypto
	}
	return &b.state.Stocks
}

func (b *Book) save() error {
	if b.filePath == "" {
		return nil
	}
	if err := saveState(b.filePath, b.state); err != nil {
		return fmt.Errorf("save target book: %w", err)
	}
	return nil
}
