package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/exchange"
	"github.com/Holic101/hyperliquid-dca-bot/internal/executor"
	"github.com/Holic101/hyperliquid-dca-bot/internal/feed"
	"github.com/Holic101/hyperliquid-dca-bot/internal/httpx"
	"github.com/Holic101/hyperliquid-dca-bot/internal/ledger"
	"github.com/Holic101/hyperliquid-dca-bot/internal/notifier"
	"github.com/Holic101/hyperliquid-dca-bot/internal/scheduler"
	"github.com/Holic101/hyperliquid-dca-bot/internal/telemetry"
)

// app holds the wired components of one bot instance.
type app struct {
	cfg      *config.Config
	prices   feed.Source
	stream   *feed.MidStream
	gateway  exchange.Gateway
	ledger   ledger.Ledger
	executor *executor.Executor
	sched    *scheduler.Scheduler
	notifier scheduler.Notifier
	metrics  *telemetry.Metrics
	registry *prometheus.Registry
}

// buildApp loads and validates configuration, then wires every component.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	client := httpx.New(httpx.Config{MaxRetries: cfg.MaxRetries})

	hl := feed.NewHyperliquidSource(cfg.Exchange.BaseURL, client)
	sources := []feed.Source{hl}

	var stream *feed.MidStream
	if cfg.Feed.UseWebsocket {
		stream = feed.NewMidStream(cfg.Feed.WebsocketURL)
		// The stream leads so stale REST prices are only a fallback.
		sources = append([]feed.Source{stream}, sources...)
	}
	if cfg.Feed.CoinGeckoBaseURL != "" {
		sources = append(sources, feed.NewCoinGeckoSource(cfg.Feed.CoinGeckoBaseURL, client))
	}
	prices := feed.NewMultiSource(sources...)
	log.Info().Int("sources", len(sources)).Msg("price feed ready")

	gateway := exchange.NewHyperliquidGateway(client, cfg.Exchange.BaseURL,
		cfg.Exchange.WalletAddress, cfg.Exchange.APISecret, log.Logger)

	var led ledger.Ledger
	if cfg.Database.SQLitePath != "" {
		sl, err := ledger.NewSQLiteLedger(cfg.Database.SQLitePath, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		led = sl
	} else {
		log.Warn().Msg("no sqlite path configured, trades will not survive restarts")
		led = ledger.NewMemoryLedger()
	}

	var notif scheduler.Notifier = notifier.Noop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notif = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, "", log.Logger)
		log.Info().Msg("telegram notifications enabled")
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.New(registry)

	exec := executor.New(gateway, prices, led, metrics, cfg.Exchange, cfg.Timeouts, log.Logger)
	sched := scheduler.New(cfg, prices, exec, led, notif, metrics, log.Logger)

	return &app{
		cfg:      cfg,
		prices:   prices,
		stream:   stream,
		gateway:  gateway,
		ledger:   led,
		executor: exec,
		sched:    sched,
		notifier: notif,
		metrics:  metrics,
		registry: registry,
	}, nil
}

func (a *app) close() {
	if err := a.ledger.Close(); err != nil {
		log.Error().Err(err).Msg("close ledger")
	}
}
