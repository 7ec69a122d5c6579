package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lelsaesser/tradebot-sub000/internal/calculator"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
	"github.com/lelsaesser/tradebot-sub000/internal/notifier"
	"github.com/lelsaesser/tradebot-sub000/internal/strategy"
)

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/status":
		return s.statusReply()
	case "/targets":
		return notifier.FormatTargets(
			s.deps.Targets.Targets(model.ClassStock),
			s.deps.Targets.Targets(model.ClassCrypto),
		)
	case "/setbuy":
		return s.setTargetReply(fields[1:], true)
	case "/setsell":
		return s.setTargetReply(fields[1:], false)
	case "/rsi":
		return s.rsiReply()
	case "/sectors":
		return s.sectorsReply()
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) statusReply() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Status</b>\n\n")
	b.WriteString(fmt.Sprintf("Tracked stocks: %d\n", len(s.deps.Targets.Targets(model.ClassStock))))
	b.WriteString(fmt.Sprintf("Tracked crypto: %d\n", len(s.deps.Targets.Targets(model.ClassCrypto))))
	b.WriteString(fmt.Sprintf("Active cooldowns: %d\n", s.deps.Cooldowns.ActiveCount()))
	b.WriteString(fmt.Sprintf("Sector snapshots retained: %d\n", s.deps.Sectors.Len()))
	b.WriteString(fmt.Sprintf("Data sources: %s, %s\n", s.deps.StockFetcher.Name(), s.deps.CryptoFetcher.Name()))
	return b.String()
}

func (s *Scheduler) setTargetReply(args []string, buy bool) string {
	if len(args) != 2 {
		return "Usage: /setbuy SYMBOL PRICE (or /setsell SYMBOL PRICE)"
	}
	symbol := strings.ToUpper(args[0])
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Sprintf("Invalid price %q", args[1])
	}

	set := s.deps.Targets.SetSell
	side := "sell"
	if buy {
		set = s.deps.Targets.SetBuy
		side = "buy"
	}
	// Try the stock book first, then crypto.
	if err := set(model.ClassStock, symbol, price); err != nil {
		if cerr := set(model.ClassCrypto, symbol, price); cerr != nil {
			return fmt.Sprintf("❌ %v", err)
		}
	}
	return fmt.Sprintf("✅ %s target for %s set to %.2f", side, symbol, price)
}

func (s *Scheduler) rsiReply() string {
	var b strings.Builder
	b.WriteString("📊 <b>RSI(14)</b>\n\n")
	for _, class := range []model.AssetClass{model.ClassStock, model.ClassCrypto} {
		for _, tp := range s.deps.Targets.Targets(class) {
			window := s.deps.Prices.Window(tp.Symbol)
			value, err := calculator.WilderRSI(calculator.Prices(window), strategy.RsiPeriod)
			if err != nil {
				if errors.Is(err, calculator.ErrNotEnoughData) {
					b.WriteString(fmt.Sprintf("%s: not enough data (%d points)\n", tp.Symbol, len(window)))
				}
				continue
			}
			b.WriteString(fmt.Sprintf("%s: %.1f\n", tp.Symbol, value))
		}
	}
	return b.String()
}

func (s *Scheduler) sectorsReply() string {
	signals := s.deps.Rotation.Analyze(s.deps.Sectors.All())
	if len(signals) == 0 {
		return fmt.Sprintf("No high-confidence rotation signals (%d snapshots retained)", s.deps.Sectors.Len())
	}
	return notifier.FormatSectorSignals(signals)
}
