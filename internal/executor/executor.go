package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/exchange"
	"github.com/Holic101/hyperliquid-dca-bot/internal/feed"
	"github.com/Holic101/hyperliquid-dca-bot/internal/ledger"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
	"github.com/Holic101/hyperliquid-dca-bot/internal/strategy"
	"github.com/Holic101/hyperliquid-dca-bot/internal/telemetry"
)

var (
	// ErrInsufficientOperatingBalance means the account is below the
	// configured safety floor and no trade may be attempted.
	ErrInsufficientOperatingBalance = errors.New("operating balance below floor")
	// ErrInsufficientTradeBalance means the balance cannot cover the
	// decided notional. The trade is never downsized to fit.
	ErrInsufficientTradeBalance = errors.New("balance below trade amount")
	// ErrPriceUnavailable means no price source produced a reference price.
	ErrPriceUnavailable = errors.New("reference price unavailable")
	// ErrOrderNotFilled means the IOC order was cancelled without a fill.
	ErrOrderNotFilled = errors.New("order not filled")
)

// Executor turns a sizing decision into an order and a ledger record.
// Every terminal outcome, including skips and failures, is persisted.
type Executor struct {
	gateway  exchange.Gateway
	prices   feed.Source
	ledger   ledger.Ledger
	metrics  *telemetry.Metrics
	xcfg     config.ExchangeConfig
	timeouts config.TimeoutsConfig
	log      zerolog.Logger
}

func New(gw exchange.Gateway, prices feed.Source, led ledger.Ledger, metrics *telemetry.Metrics, xcfg config.ExchangeConfig, timeouts config.TimeoutsConfig, log zerolog.Logger) *Executor {
	return &Executor{
		gateway:  gw,
		prices:   prices,
		ledger:   led,
		metrics:  metrics,
		xcfg:     xcfg,
		timeouts: timeouts,
		log:      log.With().Str("component", "executor").Logger(),
	}
}

// Execute carries out one decision for one asset. The returned record is
// always persisted before Execute returns; the error, when non-nil,
// classifies why the cycle ended without a fill.
func (e *Executor) Execute(ctx context.Context, cfg config.AssetConfig, dec *strategy.Decision) (*model.TradeRecord, error) {
	if dec.Skip {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusSkipped,
			Reason: dec.Reason,
		}, nil)
	}

	bctx, cancel := withTimeout(ctx, e.timeouts.BalanceFetch)
	balance, err := e.gateway.Balance(bctx, e.xcfg.QuoteCurrency)
	cancel()
	if err != nil {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusFailed,
			Reason: fmt.Sprintf("balance check failed: %v", err),
		}, fmt.Errorf("fetch balance: %w", err))
	}
	if balance < e.xcfg.MinOperatingBalance {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusSkipped,
			Reason: fmt.Sprintf("operating balance %.2f below floor %.2f", balance, e.xcfg.MinOperatingBalance),
		}, ErrInsufficientOperatingBalance)
	}
	if balance < dec.AmountUSD {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusSkipped,
			Reason: fmt.Sprintf("balance %.2f cannot cover trade amount %.2f", balance, dec.AmountUSD),
		}, ErrInsufficientTradeBalance)
	}

	pctx, cancel := withTimeout(ctx, e.timeouts.PriceFetch)
	refPrice, err := e.prices.CurrentPrice(pctx, cfg.Symbol)
	cancel()
	if err != nil {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusFailed,
			Reason: "no price source available",
		}, fmt.Errorf("%w: %v", ErrPriceUnavailable, err))
	}

	ictx, cancel := withTimeout(ctx, e.timeouts.PriceFetch)
	inc, err := e.gateway.Increments(ictx, cfg.Symbol)
	cancel()
	if err != nil {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusFailed,
			Price:  refPrice,
			Reason: fmt.Sprintf("asset metadata unavailable: %v", err),
		}, fmt.Errorf("fetch increments: %w", err))
	}

	quantity := floorToStep(dec.AmountUSD/refPrice, inc.QuantityStep)
	if quantity <= 0 {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusSkipped,
			Price:  refPrice,
			Reason: fmt.Sprintf("amount %.2f rounds to zero quantity at price %.2f", dec.AmountUSD, refPrice),
		}, nil)
	}
	limitPrice := floorToStep(refPrice*(1+e.xcfg.SlippagePct/100), inc.PriceStep)

	e.log.Info().
		Str("asset", cfg.Symbol).
		Float64("ref_price", refPrice).
		Float64("limit_price", limitPrice).
		Float64("quantity", quantity).
		Float64("amount_usd", dec.AmountUSD).
		Msg("submitting order")

	octx, cancel := withTimeout(ctx, e.timeouts.OrderSubmit)
	res, err := e.gateway.SubmitIOCBuy(octx, cfg.Symbol, quantity, limitPrice)
	cancel()
	if err != nil {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusFailed,
			Price:  refPrice,
			Reason: fmt.Sprintf("order submission failed: %v", err),
		}, fmt.Errorf("submit order: %w", err))
	}
	if !res.Filled {
		return e.finish(ctx, cfg, dec, &model.TradeRecord{
			Status: model.StatusFailed,
			Price:  refPrice,
			Reason: "ioc order cancelled without fill",
		}, ErrOrderNotFilled)
	}

	fillPrice := res.AvgPrice
	if fillPrice <= 0 {
		fillPrice = limitPrice
	}
	return e.finish(ctx, cfg, dec, &model.TradeRecord{
		Status:   model.StatusFilled,
		Price:    fillPrice,
		Quantity: res.FilledQty,
		TxID:     res.TxID,
	}, nil)
}

// finish fills in the record's common fields, persists it and updates
// metrics. The caller's error is passed through.
func (e *Executor) finish(ctx context.Context, cfg config.AssetConfig, dec *strategy.Decision, rec *model.TradeRecord, cause error) (*model.TradeRecord, error) {
	rec.ID = uuid.NewString()
	rec.Timestamp = time.Now().UTC()
	rec.Asset = cfg.Symbol
	rec.AmountUSD = dec.AmountUSD
	if rec.Filled() {
		rec.AmountUSD = rec.Price * rec.Quantity
		rec.Reason = ""
	}
	if dec.Volatility != nil {
		rec.Volatility = dec.Volatility.Annualized
	}

	if err := e.ledger.Append(ctx, rec); err != nil {
		// The trade outcome stands even when the write fails; surface
		// the persistence problem alongside it.
		e.log.Error().Err(err).Str("asset", rec.Asset).Msg("ledger append failed")
		if cause == nil {
			cause = fmt.Errorf("persist trade: %w", err)
		}
	}

	if e.metrics != nil {
		e.metrics.TradesTotal.WithLabelValues(rec.Asset, string(rec.Status)).Inc()
		if rec.Filled() {
			e.metrics.TradeAmountUSD.WithLabelValues(rec.Asset).Add(rec.AmountUSD)
		}
	}

	evt := e.log.Info()
	if rec.Status == model.StatusFailed {
		evt = e.log.Error()
	}
	evt.Str("asset", rec.Asset).
		Str("status", string(rec.Status)).
		Float64("amount_usd", rec.AmountUSD).
		Str("reason", rec.Reason).
		Msg("trade outcome recorded")

	return rec, cause
}

// withTimeout bounds ctx when a positive timeout is configured.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// floorToStep rounds v down to the nearest multiple of step.
func floorToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Floor(v/step+1e-9) * step
}
