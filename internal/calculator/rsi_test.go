package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSI_InsufficientData(t *testing.T) {
	prices := []float64{100, 101, 102}
	_, err := CalculateRSI(prices, 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateRSI_AllGainsIsHundred(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	rsi, err := CalculateRSI(prices, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)
}

func TestCalculateRSI_AllLossesNearZero(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	rsi, err := CalculateRSI(prices, 14)
	require.NoError(t, err)
	assert.Less(t, rsi, 1.0)
}

func TestCalculateRSI_BalancedSeriesIsNeutral(t *testing.T) {
	// Alternating equal gains and losses should land near 50.
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
		if i%2 == 1 {
			prices[i] = 101
		}
	}
	rsi, err := CalculateRSI(prices, 14)
	require.NoError(t, err)
	assert.InDelta(t, 50, rsi, 10)
}

func TestCalculateRSI_Bounded(t *testing.T) {
	prices := []float64{100, 104, 99, 107, 103, 110, 95, 102, 108, 101, 99, 112, 105, 100, 103, 98}
	rsi, err := CalculateRSI(prices, 14)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rsi, 0.0)
	assert.LessOrEqual(t, rsi, 100.0)
}

func TestCalculateRSI_InvalidPeriod(t *testing.T) {
	_, err := CalculateRSI([]float64{1, 2, 3}, 0)
	require.Error(t, err)
}
