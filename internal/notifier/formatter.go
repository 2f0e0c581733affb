package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
	"github.com/Holic101/hyperliquid-dca-bot/internal/strategy"
)

// FormatTradeOutcome formats one terminal trade outcome into a Telegram
// message.
func FormatTradeOutcome(rec *model.TradeRecord, dec *strategy.Decision) string {
	var b strings.Builder

	switch rec.Status {
	case model.StatusFilled:
		b.WriteString(fmt.Sprintf("✅ <b>Bought %s</b> | %s\n\n", rec.Asset, rec.Timestamp.Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Amount: $%s\n", humanize.CommafWithDigits(rec.AmountUSD, 2)))
		b.WriteString(fmt.Sprintf("Price: $%s\n", humanize.CommafWithDigits(rec.Price, 2)))
		b.WriteString(fmt.Sprintf("Quantity: %.6f\n", rec.Quantity))
		if rec.TxID != "" {
			b.WriteString(fmt.Sprintf("Order: %s\n", rec.TxID))
		}
	case model.StatusSkipped:
		b.WriteString(fmt.Sprintf("⏭ <b>Skipped %s</b>\n\n%s\n", rec.Asset, rec.Reason))
	case model.StatusFailed:
		b.WriteString(fmt.Sprintf("❌ <b>Failed %s</b>\n\n%s\n", rec.Asset, rec.Reason))
	}

	if dec != nil && !dec.Skip {
		b.WriteString("\n")
		if dec.Volatility != nil {
			b.WriteString(fmt.Sprintf("Volatility: %.1f%% (%dd)\n", dec.Volatility.Annualized, dec.Volatility.WindowDays))
		} else {
			b.WriteString("Volatility: unavailable\n")
		}
		if dec.RSI.HasValue {
			b.WriteString(fmt.Sprintf("RSI: %.1f\n", dec.RSI.Value))
		}
		if dec.Dips.Multiplier > 1.0 {
			b.WriteString(fmt.Sprintf("Dip boost: x%.2f (%.1f%% below MA)\n", dec.Dips.Multiplier, dec.Dips.MaxDipPct))
		}
		if dec.Frequency.Changed {
			b.WriteString(fmt.Sprintf("Frequency: %s (x%.2f amount)\n", dec.Frequency.Recommended, dec.Frequency.Rescale))
		}
	}
	return b.String()
}

// FormatStats formats portfolio statistics for one asset.
func FormatStats(stats *model.PortfolioStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s portfolio</b>\n\n", stats.Asset))
	if stats.TradeCount == 0 {
		b.WriteString("No filled trades yet.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Trades: %d\n", stats.TradeCount))
	b.WriteString(fmt.Sprintf("Invested: $%s\n", humanize.CommafWithDigits(stats.TotalInvested, 2)))
	b.WriteString(fmt.Sprintf("Holdings: %.6f\n", stats.Holdings))
	b.WriteString(fmt.Sprintf("Avg buy price: $%s\n", humanize.CommafWithDigits(stats.AvgBuyPrice, 2)))
	b.WriteString(fmt.Sprintf("First trade: %s\n", stats.FirstTrade.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Last trade: %s (%s)\n", stats.LastTrade.Format("2006-01-02"), humanize.Time(stats.LastTrade)))
	return b.String()
}

// FormatCycleSummary formats the end-of-cycle digest.
func FormatCycleSummary(started time.Time, outcomes []*model.TradeRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>DCA cycle</b> | %s\n\n", started.Format("2006-01-02 15:04")))
	if len(outcomes) == 0 {
		b.WriteString("No assets due.\n")
		return b.String()
	}
	for _, rec := range outcomes {
		switch rec.Status {
		case model.StatusFilled:
			b.WriteString(fmt.Sprintf("✅ %s: $%s @ $%s\n", rec.Asset,
				humanize.CommafWithDigits(rec.AmountUSD, 2), humanize.CommafWithDigits(rec.Price, 2)))
		case model.StatusSkipped:
			b.WriteString(fmt.Sprintf("⏭ %s: %s\n", rec.Asset, rec.Reason))
		case model.StatusFailed:
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", rec.Asset, rec.Reason))
		}
	}
	return b.String()
}
