package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Fmp struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"fmp"`
	CoinGecko struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"coingecko"`
	Benchmark string `yaml:"benchmark"`
	Schedule  struct {
		StockCron            string `yaml:"stock_cron"`
		CryptoCron           string `yaml:"crypto_cron"`
		SectorCron           string `yaml:"sector_cron"`
		RelativeStrengthCron string `yaml:"relative_strength_cron"`
		SweepCron            string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Alerts struct {
		CooldownTTLMinutes int `yaml:"cooldown_ttl_minutes"`
	} `yaml:"alerts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Targets struct {
		StateFile string              `yaml:"state_file"`
		Stocks    []model.TargetPrice `yaml:"stocks"`
		Crypto    []model.TargetPrice `yaml:"crypto"`
	} `yaml:"targets"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.Fmp.APIKey = v
	}
	if v := os.Getenv("FMP_BASE_URL"); v != "" {
		cfg.Fmp.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("COOLDOWN_TTL_MINUTES"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Alerts.CooldownTTLMinutes = ttl
		}
	}

	// Defaults
	if cfg.Benchmark == "" {
		cfg.Benchmark = "SPY"
	}
	if cfg.Schedule.StockCron == "" {
		// Every 10 minutes during US market hours, weekdays.
		cfg.Schedule.StockCron = "0 */10 14-21 * * 1-5"
	}
	if cfg.Schedule.CryptoCron == "" {
		cfg.Schedule.CryptoCron = "0 */10 * * * *"
	}
	if cfg.Schedule.SectorCron == "" {
		cfg.Schedule.SectorCron = "0 30 21 * * 1-5"
	}
	if cfg.Schedule.RelativeStrengthCron == "" {
		cfg.Schedule.RelativeStrengthCron = "0 15 21 * * 1-5"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 0 * * * *"
	}
	if cfg.Alerts.CooldownTTLMinutes == 0 {
		cfg.Alerts.CooldownTTLMinutes = 24 * 60
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tradebot.db"
	}
	if cfg.Targets.StateFile == "" {
		cfg.Targets.StateFile = "data/targets.json"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and that configured
// targets are sane; invalid targets never reach the engines.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	// The FMP key is only needed when stock targets are polled; a
	// crypto-only deployment runs without one.
	if c.Fmp.APIKey == "" && len(c.Targets.Stocks) > 0 {
		return fmt.Errorf("fmp.api_key is required when stock targets are configured")
	}
	if c.Alerts.CooldownTTLMinutes <= 0 {
		return fmt.Errorf("alerts.cooldown_ttl_minutes must be positive")
	}
	for _, tp := range append(append([]model.TargetPrice(nil), c.Targets.Stocks...), c.Targets.Crypto...) {
		if tp.Symbol == "" {
			return fmt.Errorf("target with empty symbol")
		}
		if tp.Buy < 0 || tp.Sell < 0 {
			return fmt.Errorf("target for %s has negative price", tp.Symbol)
		}
	}
	return nil
}
