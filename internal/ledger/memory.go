package ledger

import (
	"context"
	"sync"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// MemoryLedger keeps records in memory. Used in tests and dry runs.
type MemoryLedger struct {
	mu      sync.Mutex
	records []*model.TradeRecord
}

func NewMemoryLedger() *MemoryLedger { return &MemoryLedger{} }

func (m *MemoryLedger) Append(_ context.Context, rec *model.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *MemoryLedger) LastFilled(_ context.Context, asset string) (*model.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.Asset == asset && r.Filled() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryLedger) History(_ context.Context, asset string, limit int) ([]*model.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TradeRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Asset != asset {
			continue
		}
		cp := *m.records[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryLedger) Stats(_ context.Context, asset string) (*model.PortfolioStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &model.PortfolioStats{Asset: asset}
	for _, r := range m.records {
		if r.Asset != asset || !r.Filled() {
			continue
		}
		stats.TradeCount++
		stats.TotalInvested += r.AmountUSD
		stats.Holdings += r.Quantity
		if stats.FirstTrade.IsZero() || r.Timestamp.Before(stats.FirstTrade) {
			stats.FirstTrade = r.Timestamp
		}
		if r.Timestamp.After(stats.LastTrade) {
			stats.LastTrade = r.Timestamp
		}
	}
	if stats.Holdings > 0 {
		stats.AvgBuyPrice = stats.TotalInvested / stats.Holdings
	}
	return stats, nil
}

func (m *MemoryLedger) Close() error { return nil }
