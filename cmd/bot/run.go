package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Holic101/hyperliquid-dca-bot/internal/notifier"
	"github.com/Holic101/hyperliquid-dca-bot/internal/telemetry"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot as a daemon on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

func runDaemon() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.stream != nil {
		go a.stream.Run(ctx)
		log.Info().Str("url", a.cfg.Feed.WebsocketURL).Msg("price stream started")
	}

	if a.cfg.Metrics.ListenAddr != "" {
		go func() {
			if err := telemetry.Serve(a.cfg.Metrics.ListenAddr, a.registry, log.Logger); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if tn, ok := a.notifier.(*notifier.TelegramNotifier); ok {
		go tn.StartPolling(ctx, a.handleCommand(ctx))
		log.Info().Msg("telegram polling started")
	}

	if err := a.sched.Start(ctx); err != nil {
		return err
	}
	defer a.sched.Stop()

	if a.cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing cycle now")
		go a.sched.RunCycle(ctx)
	}

	log.Info().Msg("bot is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	return nil
}

// handleCommand answers Telegram chat commands.
func (a *app) handleCommand(ctx context.Context) notifier.CommandHandler {
	return func(command string) string {
		switch {
		case command == "/buy":
			go a.sched.RunCycle(ctx)
			return "Cycle started."
		case command == "/stats":
			var b strings.Builder
			for _, asset := range a.cfg.EnabledAssets() {
				stats, err := a.ledger.Stats(ctx, asset.Symbol)
				if err != nil {
					log.Error().Err(err).Str("asset", asset.Symbol).Msg("stats query failed")
					continue
				}
				b.WriteString(notifier.FormatStats(stats))
				b.WriteString("\n")
			}
			if b.Len() == 0 {
				return "No enabled assets."
			}
			return b.String()
		default:
			return "Commands:\n/buy - run a cycle now\n/stats - portfolio statistics"
		}
	}
}
