package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// ErrInsufficientData is returned when a price series is too short for the
// requested calculation. Callers treat it as "use the fallback", never as a
// fatal condition.
var ErrInsufficientData = errors.New("insufficient price data")

// ComputeVolatility computes annualized volatility from an ordered daily
// price series over the given window: the sample standard deviation of
// day-over-day simple returns across the most recent window+1 points,
// scaled by sqrt(365) and expressed as a percentage.
//
// A constant-price series is valid zero-volatility input; only series with
// fewer than window points, or fewer than two computable returns, are
// rejected with ErrInsufficientData.
func ComputeVolatility(points []model.PricePoint, window int) (*model.VolatilitySample, error) {
	if window <= 0 {
		return nil, fmt.Errorf("volatility window must be positive, got %d", window)
	}
	if len(points) < window {
		return nil, fmt.Errorf("%w: have %d points, need %d", ErrInsufficientData, len(points), window)
	}

	prices := model.ClosePrices(points)
	if len(prices) > window+1 {
		prices = prices[len(prices)-(window+1):]
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return nil, fmt.Errorf("%w: only %d valid returns", ErrInsufficientData, len(returns))
	}

	daily := stdDev(returns)
	return &model.VolatilitySample{
		WindowDays: window,
		Annualized: daily * math.Sqrt(365) * 100,
	}, nil
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(xs []float64) float64 {
	n := float64(len(xs))
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= n

	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / (n - 1))
}
