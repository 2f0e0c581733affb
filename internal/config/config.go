package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Holic101/hyperliquid-dca-bot/internal/calculator"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// RSIConfig gates trades on the Relative Strength Index.
type RSIConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Period     int     `yaml:"period"`
	Oversold   float64 `yaml:"oversold_threshold"`
	Overbought float64 `yaml:"overbought_threshold"`
}

// MADipConfig scales the notional when price trades below moving averages.
type MADipConfig struct {
	Enabled       bool      `yaml:"enabled"`
	Type          string    `yaml:"type"` // SMA or EMA
	Periods       []int     `yaml:"periods"`
	DipThresholds []float64 `yaml:"dip_thresholds"` // percent below MA, aligned with Periods
}

// DynamicFrequencyConfig adjusts the trade cadence with volatility regime.
type DynamicFrequencyConfig struct {
	Enabled          bool    `yaml:"enabled"`
	LowVolThreshold  float64 `yaml:"low_vol_threshold"`
	HighVolThreshold float64 `yaml:"high_vol_threshold"`
}

// AssetConfig holds per-asset strategy settings. It is immutable within a
// run; changes require a config reload between cycles.
type AssetConfig struct {
	Symbol           string                 `yaml:"symbol"`
	BaseAmount       float64                `yaml:"base_amount"`
	MinAmount        float64                `yaml:"min_amount"`
	MaxAmount        float64                `yaml:"max_amount"`
	Frequency        model.Frequency        `yaml:"frequency"`
	VolatilityWindow int                    `yaml:"volatility_window"`
	LowVolThreshold  float64                `yaml:"low_vol_threshold"`
	HighVolThreshold float64                `yaml:"high_vol_threshold"`
	Enabled          bool                   `yaml:"enabled"`
	RSI              RSIConfig              `yaml:"rsi"`
	MADips           MADipConfig            `yaml:"ma_dips"`
	DynamicFrequency DynamicFrequencyConfig `yaml:"dynamic_frequency"`
}

// ExchangeConfig describes the exchange connection and order safety rails.
type ExchangeConfig struct {
	BaseURL             string  `yaml:"base_url"`
	WalletAddress       string  `yaml:"wallet_address"`
	APISecret           string  `yaml:"api_secret"`
	QuoteCurrency       string  `yaml:"quote_currency"`
	MinOperatingBalance float64 `yaml:"min_operating_balance"`
	SlippagePct         float64 `yaml:"slippage_pct"`
}

// TimeoutsConfig bounds each external call type separately.
type TimeoutsConfig struct {
	PriceFetch   time.Duration `yaml:"price_fetch"`
	BalanceFetch time.Duration `yaml:"balance_fetch"`
	OrderSubmit  time.Duration `yaml:"order_submit"`
}

// Config holds all application configuration.
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Feed struct {
		CoinGeckoBaseURL string `yaml:"coingecko_base_url"`
		UseWebsocket     bool   `yaml:"use_websocket"`
		WebsocketURL     string `yaml:"websocket_url"`
	} `yaml:"feed"`
	Schedule struct {
		Cron          string `yaml:"cron"`
		MaxConcurrent int    `yaml:"max_concurrent"`
		RunOnStart    bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	MaxRetries int           `yaml:"max_retries"`
	Assets     []AssetConfig `yaml:"assets"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. Validation is a separate step so that a bad file
// is distinguishable from a bad value.
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
	if v := os.Getenv("HYPERLIQUID_WALLET_ADDRESS"); v != "" {
		cfg.Exchange.WalletAddress = v
	}
	if v := os.Getenv("HYPERLIQUID_API_SECRET"); v != "" {
		cfg.Exchange.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}

	// Defaults
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api.hyperliquid.xyz"
	}
	if cfg.Exchange.QuoteCurrency == "" {
		cfg.Exchange.QuoteCurrency = "USDC"
	}
	if cfg.Exchange.MinOperatingBalance == 0 {
		cfg.Exchange.MinOperatingBalance = 100
	}
	if cfg.Exchange.SlippagePct == 0 {
		cfg.Exchange.SlippagePct = 0.01
	}
	if cfg.Feed.CoinGeckoBaseURL == "" {
		cfg.Feed.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Feed.WebsocketURL == "" {
		cfg.Feed.WebsocketURL = "wss://api.hyperliquid.xyz/ws"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 9 * * *" // daily 09:00, with seconds field
	}
	if cfg.Schedule.MaxConcurrent == 0 {
		cfg.Schedule.MaxConcurrent = 4
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/dca_bot.db"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9187"
	}
	if cfg.Timeouts.PriceFetch == 0 {
		cfg.Timeouts.PriceFetch = 15 * time.Second
	}
	if cfg.Timeouts.BalanceFetch == 0 {
		cfg.Timeouts.BalanceFetch = 10 * time.Second
	}
	if cfg.Timeouts.OrderSubmit == 0 {
		cfg.Timeouts.OrderSubmit = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	for i := range cfg.Assets {
		applyAssetDefaults(&cfg.Assets[i])
	}

	return cfg, nil
}

func applyAssetDefaults(a *AssetConfig) {
	if a.Frequency == "" {
		a.Frequency = model.FreqWeekly
	}
	if a.VolatilityWindow == 0 {
		a.VolatilityWindow = 30
	}
	if a.LowVolThreshold == 0 {
		a.LowVolThreshold = 35
	}
	if a.HighVolThreshold == 0 {
		a.HighVolThreshold = 85
	}
	if a.RSI.Period == 0 {
		a.RSI.Period = 14
	}
	if a.RSI.Oversold == 0 {
		a.RSI.Oversold = 30
	}
	if a.RSI.Overbought == 0 {
		a.RSI.Overbought = 70
	}
	if a.MADips.Type == "" {
		a.MADips.Type = "SMA"
	}
	if len(a.MADips.Periods) == 0 {
		a.MADips.Periods = []int{20, 50, 200}
		a.MADips.DipThresholds = []float64{2, 5, 10}
	}
	if a.DynamicFrequency.LowVolThreshold == 0 {
		a.DynamicFrequency.LowVolThreshold = 25
	}
	if a.DynamicFrequency.HighVolThreshold == 0 {
		a.DynamicFrequency.HighVolThreshold = 50
	}
}

// Validate checks the whole configuration and rejects it on the first
// violation. A config that fails validation must never be partially applied.
func (c *Config) Validate() error {
	if c.Exchange.WalletAddress == "" {
		return fmt.Errorf("exchange.wallet_address is required")
	}
	if c.Exchange.MinOperatingBalance < 0 {
		return fmt.Errorf("exchange.min_operating_balance must not be negative")
	}
	if c.Exchange.SlippagePct <= 0 || c.Exchange.SlippagePct > 5 {
		return fmt.Errorf("exchange.slippage_pct must be in (0, 5], got %v", c.Exchange.SlippagePct)
	}
	if c.Schedule.MaxConcurrent < 1 {
		return fmt.Errorf("schedule.max_concurrent must be at least 1")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset must be configured")
	}
	seen := make(map[string]bool, len(c.Assets))
	for i := range c.Assets {
		a := &c.Assets[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("asset %q: %w", a.Symbol, err)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("duplicate asset symbol %q", a.Symbol)
		}
		seen[a.Symbol] = true
	}
	return nil
}

// Validate checks the per-asset strategy invariants.
func (a *AssetConfig) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if a.MinAmount <= 0 || a.BaseAmount <= 0 || a.MaxAmount <= 0 {
		return fmt.Errorf("all amounts must be positive")
	}
	if a.MinAmount > a.BaseAmount || a.BaseAmount > a.MaxAmount {
		return fmt.Errorf("amounts must satisfy min <= base <= max (got %v <= %v <= %v)",
			a.MinAmount, a.BaseAmount, a.MaxAmount)
	}
	if !a.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", a.Frequency)
	}
	if a.VolatilityWindow <= 0 {
		return fmt.Errorf("volatility_window must be positive")
	}
	if a.LowVolThreshold >= a.HighVolThreshold {
		return fmt.Errorf("low_vol_threshold must be < high_vol_threshold (got %v >= %v)",
			a.LowVolThreshold, a.HighVolThreshold)
	}
	if a.RSI.Enabled {
		if a.RSI.Period <= 1 {
			return fmt.Errorf("rsi.period must be > 1")
		}
		if a.RSI.Oversold >= a.RSI.Overbought {
			return fmt.Errorf("rsi.oversold_threshold must be < rsi.overbought_threshold")
		}
		if a.RSI.Oversold < 0 || a.RSI.Overbought > 100 {
			return fmt.Errorf("rsi thresholds must be within [0, 100]")
		}
	}
	if a.MADips.Enabled {
		if _, err := calculator.ParseMAType(a.MADips.Type); err != nil {
			return err
		}
		if len(a.MADips.Periods) == 0 {
			return fmt.Errorf("ma_dips.periods must not be empty")
		}
		if len(a.MADips.Periods) != len(a.MADips.DipThresholds) {
			return fmt.Errorf("ma_dips.periods and ma_dips.dip_thresholds must have equal length")
		}
		for i, p := range a.MADips.Periods {
			if p <= 0 {
				return fmt.Errorf("ma_dips.periods[%d] must be positive", i)
			}
			if a.MADips.DipThresholds[i] <= 0 {
				return fmt.Errorf("ma_dips.dip_thresholds[%d] must be positive", i)
			}
		}
	}
	if a.DynamicFrequency.Enabled {
		if a.DynamicFrequency.LowVolThreshold >= a.DynamicFrequency.HighVolThreshold {
			return fmt.Errorf("dynamic_frequency.low_vol_threshold must be < high_vol_threshold")
		}
	}
	return nil
}

// EnabledAssets returns the assets eligible for trading this run.
func (c *Config) EnabledAssets() []AssetConfig {
	out := make([]AssetConfig, 0, len(c.Assets))
	for _, a := range c.Assets {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}
