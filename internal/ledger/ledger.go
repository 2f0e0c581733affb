package ledger

import (
	"context"
	"errors"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// ErrNotFound is returned when no matching trade exists.
var ErrNotFound = errors.New("no trade found")

// Ledger is an append-only store of terminal trade outcomes. Records are
// never updated or deleted once written.
type Ledger interface {
	// Append persists one record.
	Append(ctx context.Context, rec *model.TradeRecord) error
	// LastFilled returns the most recent FILLED record for the asset,
	// or ErrNotFound if the asset has never been bought. Skipped and
	// failed records never satisfy this query.
	LastFilled(ctx context.Context, asset string) (*model.TradeRecord, error)
	// History returns records for the asset, newest first, up to limit.
	// A limit of 0 means no limit.
	History(ctx context.Context, asset string, limit int) ([]*model.TradeRecord, error)
	// Stats aggregates the asset's filled trades.
	Stats(ctx context.Context, asset string) (*model.PortfolioStats, error)
	Close() error
}
