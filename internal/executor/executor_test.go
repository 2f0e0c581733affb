package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/exchange"
	"github.com/Holic101/hyperliquid-dca-bot/internal/feed"
	"github.com/Holic101/hyperliquid-dca-bot/internal/ledger"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
	"github.com/Holic101/hyperliquid-dca-bot/internal/strategy"
)

func testAsset() config.AssetConfig {
	return config.AssetConfig{
		Symbol:     "UBTC",
		BaseAmount: 100,
		MinAmount:  50,
		MaxAmount:  200,
	}
}

func testExchangeConfig() config.ExchangeConfig {
	return config.ExchangeConfig{
		QuoteCurrency:       "USDC",
		MinOperatingBalance: 100,
		SlippagePct:         0.5,
	}
}

func newTestExecutor(gw *exchange.MockGateway, src *feed.MockSource) (*Executor, *ledger.MemoryLedger) {
	led := ledger.NewMemoryLedger()
	ex := New(gw, src, led, nil, testExchangeConfig(), config.TimeoutsConfig{}, zerolog.Nop())
	return ex, led
}

func lastRecord(t *testing.T, led *ledger.MemoryLedger, asset string) *model.TradeRecord {
	t.Helper()
	hist, err := led.History(context.Background(), asset, 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	return hist[0]
}

func TestExecuteFilled(t *testing.T) {
	gw := &exchange.MockGateway{
		BalanceUSD: 1000,
		Inc:        exchange.Increments{QuantityStep: 0.0001, PriceStep: 0.1},
		Result:     exchange.OrderResult{Filled: true, TxID: "42"},
	}
	src := &feed.MockSource{Price: 50000}
	ex, led := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFilled, rec.Status)
	assert.Equal(t, "42", rec.TxID)

	qty, limitPx := gw.LastOrder()
	// 100/50000 = 0.002, already on the step grid.
	assert.InDelta(t, 0.002, qty, 1e-9)
	// 50000 * 1.005 = 50250, floored to the 0.1 tick.
	assert.InDelta(t, 50250.0, limitPx, 1e-6)
	assert.Positive(t, rec.Price)
	assert.Positive(t, rec.AmountUSD)

	stored := lastRecord(t, led, "UBTC")
	assert.True(t, stored.Filled())
}

func TestExecuteOperatingBalanceFloor(t *testing.T) {
	gw := &exchange.MockGateway{BalanceUSD: 50}
	src := &feed.MockSource{Price: 50000}
	ex, led := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 30}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	assert.ErrorIs(t, err, ErrInsufficientOperatingBalance)
	assert.Equal(t, model.StatusSkipped, rec.Status)
	assert.Contains(t, rec.Reason, "operating balance")
	assert.Zero(t, gw.SubmitCalls())

	stored := lastRecord(t, led, "UBTC")
	assert.Equal(t, model.StatusSkipped, stored.Status)
}

func TestExecuteTradeBalanceNoDownsizing(t *testing.T) {
	gw := &exchange.MockGateway{BalanceUSD: 120}
	src := &feed.MockSource{Price: 50000}
	ex, _ := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 150}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	assert.ErrorIs(t, err, ErrInsufficientTradeBalance)
	assert.Equal(t, model.StatusSkipped, rec.Status)
	assert.Zero(t, gw.SubmitCalls())
}

func TestExecutePriceUnavailable(t *testing.T) {
	gw := &exchange.MockGateway{BalanceUSD: 1000}
	src := &feed.MockSource{PriceErr: feed.ErrDataUnavailable}
	ex, led := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, model.StatusFailed, rec.Status)
	assert.Zero(t, gw.SubmitCalls())

	stored := lastRecord(t, led, "UBTC")
	assert.Equal(t, model.StatusFailed, stored.Status)
}

func TestExecuteOrderNotFilled(t *testing.T) {
	gw := &exchange.MockGateway{
		BalanceUSD: 1000,
		Result:     exchange.OrderResult{Filled: false},
	}
	src := &feed.MockSource{Price: 50000}
	ex, led := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	assert.ErrorIs(t, err, ErrOrderNotFilled)
	assert.Equal(t, model.StatusFailed, rec.Status)
	assert.Equal(t, 1, gw.SubmitCalls())

	last, lerr := led.LastFilled(context.Background(), "UBTC")
	assert.Nil(t, last)
	assert.ErrorIs(t, lerr, ledger.ErrNotFound)
}

func TestExecuteSubmitError(t *testing.T) {
	gw := &exchange.MockGateway{
		BalanceUSD: 1000,
		SubmitErr:  errors.New("exchange rejected order"),
	}
	src := &feed.MockSource{Price: 50000}
	ex, _ := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	assert.Error(t, err)
	assert.Equal(t, model.StatusFailed, rec.Status)
}

func TestExecuteSkipDecisionPersisted(t *testing.T) {
	gw := &exchange.MockGateway{BalanceUSD: 1000}
	src := &feed.MockSource{Price: 50000}
	ex, led := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", Skip: true, Reason: "RSI overbought: 88.00 >= 70.00", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkipped, rec.Status)
	assert.Contains(t, rec.Reason, "overbought")
	assert.Zero(t, gw.SubmitCalls())

	_, lerr := led.LastFilled(context.Background(), "UBTC")
	assert.ErrorIs(t, lerr, ledger.ErrNotFound)
}

// hangingGateway blocks on every balance call until its context expires.
type hangingGateway struct {
	exchange.MockGateway
}

func (h *hangingGateway) Balance(ctx context.Context, _ string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestExecuteBalanceFetchTimeout(t *testing.T) {
	led := ledger.NewMemoryLedger()
	src := &feed.MockSource{Price: 50000}
	timeouts := config.TimeoutsConfig{BalanceFetch: 10 * time.Millisecond}
	ex := New(&hangingGateway{}, src, led, nil, testExchangeConfig(), timeouts, zerolog.Nop())

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, model.StatusFailed, rec.Status)
}

func TestExecuteQuantityRoundsToZero(t *testing.T) {
	gw := &exchange.MockGateway{
		BalanceUSD: 1000,
		Inc:        exchange.Increments{QuantityStep: 1, PriceStep: 0.01},
	}
	src := &feed.MockSource{Price: 50000}
	ex, _ := newTestExecutor(gw, src)

	dec := &strategy.Decision{Asset: "UBTC", AmountUSD: 100}
	rec, err := ex.Execute(context.Background(), testAsset(), dec)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkipped, rec.Status)
	assert.Zero(t, gw.SubmitCalls())
	assert.Contains(t, rec.Reason, "zero quantity")
}
