package exchange

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the exchange cannot answer at all.
var ErrUnavailable = errors.New("exchange unavailable")

// Increments describes an asset's minimum tradable granularity.
type Increments struct {
	QuantityStep float64
	PriceStep    float64
}

// OrderResult is the terminal state of a submitted order.
type OrderResult struct {
	Filled    bool
	TxID      string
	AvgPrice  float64
	FilledQty float64
}

// Gateway is the account/order boundary of the exchange. Implementations
// live at the network edge; the executor only sees this interface.
type Gateway interface {
	// Balance returns the spot balance of the given currency.
	Balance(ctx context.Context, currency string) (float64, error)
	// Increments returns the quantity and price steps for a symbol.
	Increments(ctx context.Context, symbol string) (Increments, error)
	// SubmitIOCBuy places an immediate-or-cancel limit buy. A cancelled
	// (unfilled) order returns Filled=false with no error.
	SubmitIOCBuy(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error)
}
