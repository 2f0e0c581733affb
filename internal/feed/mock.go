package feed

import (
	"context"
	"time"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Price      float64
	Series     []model.PricePoint
	HistoryErr error
	PriceErr   error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) HistoricalPrices(_ context.Context, _ string, days int) ([]model.PricePoint, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if m.Series != nil {
		return m.Series, nil
	}
	return GenerateSeries(m.Price, days), nil
}

func (m *MockSource) CurrentPrice(_ context.Context, _ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

// GenerateSeries produces a mildly drifting daily series around basePrice.
func GenerateSeries(basePrice float64, count int) []model.PricePoint {
	start := time.Now().UTC().AddDate(0, 0, -count)
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Time:  start.AddDate(0, 0, i),
			Price: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}
