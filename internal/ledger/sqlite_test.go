package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

func newTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	l, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "trades.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func record(asset string, status model.TradeStatus, ts time.Time, amount, qty float64) *model.TradeRecord {
	return &model.TradeRecord{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Asset:     asset,
		Price:     65000,
		AmountUSD: amount,
		Quantity:  qty,
		Status:    status,
	}
}

func TestLastFilledIgnoresSkippedAndFailed(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	fill := record("UBTC", model.StatusFilled, base, 100, 0.0015)
	require.NoError(t, l.Append(ctx, fill))
	require.NoError(t, l.Append(ctx, record("UBTC", model.StatusSkipped, base.Add(24*time.Hour), 100, 0)))
	require.NoError(t, l.Append(ctx, record("UBTC", model.StatusFailed, base.Add(48*time.Hour), 100, 0)))

	got, err := l.LastFilled(ctx, "UBTC")
	require.NoError(t, err)
	assert.Equal(t, fill.ID, got.ID)
	assert.True(t, got.Timestamp.Equal(base))
}

func TestLastFilledNoTrades(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.LastFilled(context.Background(), "UETH")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, record("UBTC", model.StatusFilled, base.Add(time.Duration(i)*24*time.Hour), 100, 0.001)))
	}
	require.NoError(t, l.Append(ctx, record("UETH", model.StatusFilled, base, 50, 0.02)))

	hist, err := l.History(ctx, "UBTC", 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.True(t, hist[0].Timestamp.After(hist[1].Timestamp))
	assert.True(t, hist[1].Timestamp.After(hist[2].Timestamp))
	for _, r := range hist {
		assert.Equal(t, "UBTC", r.Asset)
	}
}

func TestStatsAggregatesFillsOnly(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.Append(ctx, record("UBTC", model.StatusFilled, base, 100, 0.002)))
	require.NoError(t, l.Append(ctx, record("UBTC", model.StatusFilled, base.Add(7*24*time.Hour), 200, 0.003)))
	require.NoError(t, l.Append(ctx, record("UBTC", model.StatusSkipped, base.Add(14*24*time.Hour), 100, 0)))

	stats, err := l.Stats(ctx, "UBTC")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TradeCount)
	assert.InDelta(t, 300, stats.TotalInvested, 1e-9)
	assert.InDelta(t, 0.005, stats.Holdings, 1e-9)
	assert.InDelta(t, 60000, stats.AvgBuyPrice, 1e-6)
	assert.True(t, stats.FirstTrade.Equal(base))
}

func TestStatsEmptyAsset(t *testing.T) {
	l := newTestLedger(t)
	stats, err := l.Stats(context.Background(), "USOL")
	require.NoError(t, err)
	assert.Zero(t, stats.TradeCount)
	assert.Zero(t, stats.AvgBuyPrice)
	assert.True(t, stats.FirstTrade.IsZero())
}
