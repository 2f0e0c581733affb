package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

func seriesFrom(prices ...float64) []model.PricePoint {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Time: start.AddDate(0, 0, i), Price: p}
	}
	return points
}

func TestComputeVolatility_InsufficientPoints(t *testing.T) {
	_, err := ComputeVolatility(seriesFrom(100, 101), 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeVolatility_ConstantSeriesIsZero(t *testing.T) {
	points := seriesFrom(100, 100, 100, 100, 100, 100)
	sample, err := ComputeVolatility(points, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, sample.WindowDays)
	assert.Zero(t, sample.Annualized)
}

func TestComputeVolatility_KnownSeries(t *testing.T) {
	// Returns: +10%, -10%, +10%. Sample std = 0.115470, annualized
	// 0.115470 * sqrt(365) * 100 = 220.61%.
	sample, err := ComputeVolatility(seriesFrom(100, 110, 99, 108.9), 3)
	require.NoError(t, err)
	assert.InDelta(t, 220.61, sample.Annualized, 0.05)
}

func TestComputeVolatility_UsesMostRecentWindow(t *testing.T) {
	// Older points outside window+1 must not influence the result.
	noisy := append(seriesFrom(1, 500, 3, 700), seriesFrom(100, 110, 99, 108.9)...)
	for i := range noisy {
		noisy[i].Time = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	sample, err := ComputeVolatility(noisy, 3)
	require.NoError(t, err)
	assert.InDelta(t, 220.61, sample.Annualized, 0.05)
}

func TestComputeVolatility_TooFewReturns(t *testing.T) {
	// Two points yield a single return, which is not enough for a sample
	// standard deviation.
	_, err := ComputeVolatility(seriesFrom(100, 105), 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeVolatility_InvalidWindow(t *testing.T) {
	_, err := ComputeVolatility(seriesFrom(100, 101, 102), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientData)
}
