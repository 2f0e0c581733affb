package exchange

import (
	"context"
	"sync"
)

// MockGateway is a scripted Gateway for tests. Safe for concurrent use so
// tests can run several assets against one instance.
type MockGateway struct {
	BalanceUSD float64
	BalanceErr error
	Inc        Increments
	IncErr     error
	Result     OrderResult
	SubmitErr  error

	mu           sync.Mutex
	submitCalls  int
	lastQuantity float64
	lastLimitPx  float64
}

func (m *MockGateway) Balance(ctx context.Context, currency string) (float64, error) {
	if m.BalanceErr != nil {
		return 0, m.BalanceErr
	}
	return m.BalanceUSD, nil
}

func (m *MockGateway) Increments(ctx context.Context, symbol string) (Increments, error) {
	if m.IncErr != nil {
		return Increments{}, m.IncErr
	}
	if m.Inc.QuantityStep == 0 {
		return Increments{QuantityStep: 0.0001, PriceStep: 0.01}, nil
	}
	return m.Inc, nil
}

func (m *MockGateway) SubmitIOCBuy(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error) {
	m.mu.Lock()
	m.submitCalls++
	m.lastQuantity = quantity
	m.lastLimitPx = limitPrice
	m.mu.Unlock()
	if m.SubmitErr != nil {
		return OrderResult{}, m.SubmitErr
	}
	res := m.Result
	if res.Filled && res.FilledQty == 0 {
		res.FilledQty = quantity
	}
	if res.Filled && res.AvgPrice == 0 {
		res.AvgPrice = limitPrice
	}
	return res, nil
}

// SubmitCalls reports how many orders were submitted.
func (m *MockGateway) SubmitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls
}

// LastOrder returns the quantity and limit price of the latest order.
func (m *MockGateway) LastOrder() (quantity, limitPx float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuantity, m.lastLimitPx
}
