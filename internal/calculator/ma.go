package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// MAType selects the moving-average flavor.
type MAType string

const (
	SMA MAType = "SMA"
	EMA MAType = "EMA"
)

// ParseMAType normalizes a config string into an MAType.
func ParseMAType(s string) (MAType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SMA":
		return SMA, nil
	case "EMA":
		return EMA, nil
	}
	return "", fmt.Errorf("invalid moving average type %q (want SMA or EMA)", s)
}

// CalculateSMA computes the simple moving average of the most recent
// `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: have %d prices, need %d for SMA", ErrInsufficientData, len(prices), period)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA computes the exponential moving average with the standard
// span smoothing alpha = 2/(period+1), seeded by the SMA of the first
// `period` prices.
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: have %d prices, need %d for EMA", ErrInsufficientData, len(prices), period)
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += prices[i]
	}
	ema := seed / float64(period)

	alpha := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(prices); i++ {
		ema = alpha*prices[i] + (1-alpha)*ema
	}
	return ema, nil
}

// CalculateMA dispatches to SMA or EMA.
func CalculateMA(prices []float64, period int, maType MAType) (float64, error) {
	if maType == EMA {
		return CalculateEMA(prices, period)
	}
	return CalculateSMA(prices, period)
}
