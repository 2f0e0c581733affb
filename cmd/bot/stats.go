package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print portfolio statistics per asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStats()
		},
	}
}

func printStats() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	for _, asset := range a.cfg.Assets {
		stats, err := a.ledger.Stats(ctx, asset.Symbol)
		if err != nil {
			return fmt.Errorf("stats for %s: %w", asset.Symbol, err)
		}
		fmt.Printf("%s\n", asset.Symbol)
		if stats.TradeCount == 0 {
			fmt.Printf("  no filled trades\n\n")
			continue
		}
		fmt.Printf("  trades:        %d\n", stats.TradeCount)
		fmt.Printf("  invested:      $%s\n", humanize.CommafWithDigits(stats.TotalInvested, 2))
		fmt.Printf("  holdings:      %.6f\n", stats.Holdings)
		fmt.Printf("  avg buy price: $%s\n", humanize.CommafWithDigits(stats.AvgBuyPrice, 2))
		fmt.Printf("  first trade:   %s\n", stats.FirstTrade.Format("2006-01-02"))
		fmt.Printf("  last trade:    %s (%s)\n\n", stats.LastTrade.Format("2006-01-02"), humanize.Time(stats.LastTrade))
	}
	return nil
}
