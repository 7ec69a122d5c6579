package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lelsaesser/tradebot-sub000/internal/alert"
	"github.com/lelsaesser/tradebot-sub000/internal/collector"
	"github.com/lelsaesser/tradebot-sub000/internal/config"
	"github.com/lelsaesser/tradebot-sub000/internal/cooldown"
	"github.com/lelsaesser/tradebot-sub000/internal/history"
	"github.com/lelsaesser/tradebot-sub000/internal/notifier"
	"github.com/lelsaesser/tradebot-sub000/internal/recorder"
	"github.com/lelsaesser/tradebot-sub000/internal/scheduler"
	"github.com/lelsaesser/tradebot-sub000/internal/strategy"
	"github.com/lelsaesser/tradebot-sub000/internal/targets"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Msg("tradebot starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Restore persisted engine state
	priceSeed, err := rec.PriceWindows()
	if err != nil {
		log.Fatal().Err(err).Msg("load price windows")
	}
	rsSeed, err := rec.RelativeStrengthStates()
	if err != nil {
		log.Fatal().Err(err).Msg("load relative strength states")
	}
	sectorSeed, err := rec.SectorSnapshots()
	if err != nil {
		log.Fatal().Err(err).Msg("load sector snapshots")
	}

	prices := history.NewStore(priceSeed, rec)
	sectors := history.NewSectorHistory(sectorSeed, rec)

	// Init target book
	book, err := targets.NewBook(cfg.Targets.StateFile, cfg.Targets.Stocks, cfg.Targets.Crypto)
	if err != nil {
		log.Fatal().Err(err).Msg("init target book")
	}

	// Init fetchers
	stockFetcher := collector.NewFmpFetcher(cfg.Fmp.BaseURL, cfg.Fmp.APIKey, cfg.Proxy)
	cryptoFetcher := collector.NewCoinGeckoFetcher(cfg.CoinGecko.BaseURL, cfg.Proxy)
	log.Info().Str("stocks", stockFetcher.Name()).Str("crypto", cryptoFetcher.Name()).Msg("data sources ready")

	// Init engines
	rsiEngine := strategy.NewRsiEngine(prices)
	rsEngine := strategy.NewRelativeStrengthEngine(cfg.Benchmark, prices, rsSeed, rec)
	rotation := strategy.NewSectorRotationAnalyzer()

	// Init alerting
	cooldownTTL := time.Duration(cfg.Alerts.CooldownTTLMinutes) * time.Minute
	tracker := cooldown.NewTracker(cooldownTTL)
	evaluator := alert.NewEvaluator(tracker)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, scheduler.Deps{
		StockFetcher:  stockFetcher,
		CryptoFetcher: cryptoFetcher,
		SectorFetcher: stockFetcher,
		Prices:        prices,
		Sectors:       sectors,
		Rsi:           rsiEngine,
		Rs:            rsEngine,
		Rotation:      rotation,
		Alerts:        evaluator,
		Cooldowns:     tracker,
		Targets:       book,
		Notifier:      tn,
		Recorder:      rec,
	})
	if err := sched.RegisterAll(scheduler.Crons{
		Stock:            cfg.Schedule.StockCron,
		Crypto:           cfg.Schedule.CryptoCron,
		Sector:           cfg.Schedule.SectorCron,
		RelativeStrength: cfg.Schedule.RelativeStrengthCron,
		Sweep:            cfg.Schedule.SweepCron,
	}); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing stock pass now")
		go sched.RunStocksNow()
	}

	log.Info().Msg("tradebot is running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("tradebot stopped")
}
