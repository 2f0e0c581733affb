package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
	"github.com/Holic101/hyperliquid-dca-bot/internal/scheduler"
	"github.com/Holic101/hyperliquid-dca-bot/internal/strategy"
)

func newOnceCmd() *cobra.Command {
	var (
		force bool
		asset string
	)
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single buy cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(force, asset)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "trade even if the interval has not elapsed")
	cmd.Flags().StringVar(&asset, "asset", "", "restrict the cycle to one symbol")
	return cmd
}

func runOnce(force bool, only string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	if !force && only == "" {
		a.sched.RunCycle(ctx)
		return nil
	}

	matched := false
	for _, cfg := range a.cfg.EnabledAssets() {
		if only != "" && cfg.Symbol != only {
			continue
		}
		matched = true

		if !force {
			due, err := a.sched.IsDue(ctx, cfg)
			if err != nil {
				return err
			}
			if !due {
				log.Info().Str("asset", cfg.Symbol).Msg("not due, skipping (use --force to override)")
				continue
			}
		}

		series, err := a.prices.HistoricalPrices(ctx, cfg.Symbol, scheduler.LookbackDays(cfg))
		if err != nil {
			log.Error().Err(err).Str("asset", cfg.Symbol).Msg("historical prices unavailable")
			series = nil
		}
		price, err := a.prices.CurrentPrice(ctx, cfg.Symbol)
		if err != nil && len(series) > 0 {
			price = series[len(series)-1].Price
		}

		dec := strategy.Evaluate(series, price, cfg)
		rec, err := a.executor.Execute(ctx, cfg, dec)
		if err != nil {
			log.Error().Err(err).Str("asset", cfg.Symbol).Msg("execution ended without fill")
		}
		if rec != nil {
			fmt.Printf("%s: %s", cfg.Symbol, describeRecord(rec))
		}
	}
	if only != "" && !matched {
		return fmt.Errorf("asset %q is not configured or not enabled", only)
	}
	return nil
}

func describeRecord(rec *model.TradeRecord) string {
	switch rec.Status {
	case model.StatusFilled:
		return fmt.Sprintf("bought %.6f @ $%.2f ($%.2f)\n", rec.Quantity, rec.Price, rec.AmountUSD)
	default:
		return fmt.Sprintf("%s (%s)\n", strings.ToLower(string(rec.Status)), rec.Reason)
	}
}
