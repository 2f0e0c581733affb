package model

import "time"

// TradeStatus is the terminal outcome of one execution attempt.
type TradeStatus string

const (
	StatusFilled  TradeStatus = "FILLED"
	StatusSkipped TradeStatus = "SKIPPED"
	StatusFailed  TradeStatus = "FAILED"
)

// TradeRecord is an immutable record of one terminal execution outcome.
// Only StatusFilled records represent acquired positions; skipped and failed
// outcomes are kept for audit and never count as the last trade when the
// scheduler computes elapsed time.
type TradeRecord struct {
	ID         string
	Timestamp  time.Time
	Asset      string
	Price      float64 // executed reference price, 0 for skips before pricing
	AmountUSD  float64 // notional spent (filled) or intended (skipped/failed)
	Quantity   float64 // base asset acquired, 0 unless filled
	Volatility float64 // annualized percent at decision time, 0 if unavailable
	TxID       string  // exchange order/transaction id, empty unless filled
	Status     TradeStatus
	Reason     string // skip/failure reason, empty for fills
}

// Filled reports whether the record represents an executed purchase.
func (r *TradeRecord) Filled() bool { return r.Status == StatusFilled }

// PortfolioStats aggregates filled trades for one asset.
type PortfolioStats struct {
	Asset         string
	TradeCount    int
	TotalInvested float64
	Holdings      float64
	AvgBuyPrice   float64
	FirstTrade    time.Time
	LastTrade     time.Time
}
