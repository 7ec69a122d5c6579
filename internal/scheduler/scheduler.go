package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/alert"
	"github.com/lelsaesser/tradebot-sub000/internal/calculator"
	"github.com/lelsaesser/tradebot-sub000/internal/collector"
	"github.com/lelsaesser/tradebot-sub000/internal/cooldown"
	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/model"
	"github.com/lelsaesser/tradebot-sub000/internal/notifier"
	"github.com/lelsaesser/tradebot-sub000/internal/recorder"
	"github.com/lelsaesser/tradebot-sub000/internal/strategy"
	"github.com/lelsaesser/tradebot-sub000/internal/targets"
)

// Sender delivers outbound notifications, retrying transient failures.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps collects the collaborators an evaluation pass touches.
type Deps struct {
	StockFetcher  collector.PriceFetcher
	CryptoFetcher collector.PriceFetcher
	SectorFetcher collector.SectorPerformanceFetcher
	Prices        *history.Store
	Sectors       *history.SectorHistory
	Rsi           *strategy.RsiEngine
	Rs            *strategy.RelativeStrengthEngine
	Rotation      *strategy.SectorRotationAnalyzer
	Alerts        *alert.Evaluator
	Cooldowns     *cooldown.Tracker
	Targets       *targets.Book
	Notifier      Sender
	Recorder      recorder.Recorder
}

// Scheduler owns the cron tasks that drive evaluation passes. Within a pass
// symbols are processed sequentially; the fetchers' rate limiters pace the
// upstream calls.
type Scheduler struct {
	Cron   *cron.Cron
	Ctx    context.Context
	deps   Deps
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Ctx:    ctx,
		deps:   deps,
		logger: log.With().Str("component", "scheduler").Logger(),
	}
}

// Crons configures the five task schedules.
type Crons struct {
	Stock            string
	Crypto           string
	Sector           string
	RelativeStrength string
	Sweep            string
}

// RegisterAll registers every periodic task.
func (s *Scheduler) RegisterAll(c Crons) error {
	tasks := []struct {
		name string
		spec string
		fn   func()
	}{
		{"stock poll", c.Stock, s.stockTask},
		{"crypto poll", c.Crypto, s.cryptoTask},
		{"sector rotation", c.Sector, s.sectorTask},
		{"relative strength", c.RelativeStrength, s.relativeStrengthTask},
		{"cooldown sweep", c.Sweep, s.sweepTask},
	}
	for _, t := range tasks {
		if _, err := s.Cron.AddFunc(t.spec, t.fn); err != nil {
			return fmt.Errorf("register %s task: %w", t.name, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.logger.Info().Msg("scheduler stopped")
}

// RunStocksNow executes the stock pass immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunStocksNow() {
	s.stockTask()
}

func (s *Scheduler) stockTask() {
	s.logger.Info().Msg("running stock pass")

	// The benchmark is always polled so relative strength stays current,
	// even when it carries no targets of its own.
	polled := false
	for _, tp := range s.deps.Targets.Targets(model.ClassStock) {
		if tp.Symbol == s.deps.Rs.Benchmark() {
			polled = true
		}
		s.pollSymbol(s.deps.StockFetcher, tp)
	}
	if !polled {
		s.pollSymbol(s.deps.StockFetcher, model.TargetPrice{Symbol: s.deps.Rs.Benchmark()})
	}
}

func (s *Scheduler) cryptoTask() {
	s.logger.Info().Msg("running crypto pass")
	for _, tp := range s.deps.Targets.Targets(model.ClassCrypto) {
		s.pollSymbol(s.deps.CryptoFetcher, tp)
	}
}

// pollSymbol fetches one symbol's price, admits it to the history, and
// evaluates threshold and RSI alerts. A fetch failure only skips this
// symbol; a persistence failure aborts the symbol before any state changed.
func (s *Scheduler) pollSymbol(fetcher collector.PriceFetcher, tp model.TargetPrice) {
	if s.Ctx.Err() != nil {
		return
	}
	price, err := fetcher.FetchLatestPrice(s.Ctx, tp.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", tp.Symbol).Msg("price fetch failed, skipping symbol")
		return
	}

	// Intraday change is measured against the last close from a prior day,
	// so repeat polls on the same day still see the full move.
	var changePercent float64
	if prev, ok := s.deps.Prices.LastBefore(tp.Symbol, time.Now()); ok {
		changePercent = calculator.ChangePercent(prev.Price, price)
	}

	changed, err := s.deps.Prices.Add(tp.Symbol, price, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", tp.Symbol).Msg("price persistence failed")
		return
	}

	if changed {
		if sig, ok := s.deps.Rsi.Evaluate(tp.Symbol); ok {
			s.trySend(notifier.FormatRsiSignal(sig))
		}
	}

	for _, a := range s.deps.Alerts.Evaluate(tp.Symbol, price, changePercent, tp) {
		s.trySend(notifier.FormatAlert(a))
		if err := s.deps.Recorder.RecordAlert(a); err != nil {
			s.logger.Error().Err(err).Str("alert_id", a.ID).Msg("record alert failed")
		}
	}
}

func (s *Scheduler) relativeStrengthTask() {
	s.logger.Info().Msg("running relative strength pass")
	for _, tp := range s.deps.Targets.Targets(model.ClassStock) {
		sig, emitted, err := s.deps.Rs.Evaluate(tp.Symbol)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", tp.Symbol).Msg("relative strength evaluation failed")
			continue
		}
		if emitted {
			s.trySend(notifier.FormatRsSignal(sig))
		}
	}
}

func (s *Scheduler) sectorTask() {
	s.logger.Info().Msg("running sector rotation pass")
	performances, err := s.deps.SectorFetcher.FetchIndustryPerformance(s.Ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("industry performance fetch failed, skipping cycle")
		return
	}

	snapshot := model.SectorSnapshot{FetchDate: time.Now(), Performances: performances}
	if err := s.deps.Sectors.Add(snapshot); err != nil {
		s.logger.Error().Err(err).Msg("sector snapshot persistence failed")
		return
	}

	signals := s.deps.Rotation.Analyze(s.deps.Sectors.All())
	if len(signals) > 0 {
		s.trySend(notifier.FormatSectorSignals(signals))
	}
}

func (s *Scheduler) sweepTask() {
	removed := s.deps.Cooldowns.Sweep()
	s.logger.Info().Int("removed", removed).Msg("cooldown sweep complete")
}

func (s *Scheduler) trySend(text string) {
	if err := s.deps.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
