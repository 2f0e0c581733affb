package feed

import (
	"context"
	"errors"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// ErrDataUnavailable is returned when a source cannot produce price data.
// Callers treat missing history as insufficient data for sizing; a missing
// current price is a hard stop for the cycle.
var ErrDataUnavailable = errors.New("price data unavailable")

// Source provides historical and current prices for an asset.
type Source interface {
	// HistoricalPrices returns up to `days` daily observations, oldest
	// first, deduplicated per calendar day.
	HistoricalPrices(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	// CurrentPrice returns the latest reference price.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
