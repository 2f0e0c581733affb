package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
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

func rsiCfg() config.RSIConfig {
	return config.RSIConfig{Enabled: true, Period: 14, Oversold: 30, Overbought: 70}
}

func TestEvaluateRSI_OverboughtSkips(t *testing.T) {
	// Strictly rising prices push Wilder RSI to 100, well past overbought.
	prices := make([]float64, 0, 30)
	for i := 0; i < 30; i++ {
		prices = append(prices, 100+float64(i)*2)
	}
	sig := EvaluateRSI(seriesFrom(prices...), rsiCfg())
	require.True(t, sig.HasValue)
	assert.True(t, sig.Skip)
	assert.GreaterOrEqual(t, sig.Value, 70.0)
	assert.Contains(t, sig.Reason, "overbought")
}

func TestEvaluateRSI_OversoldProceeds(t *testing.T) {
	prices := make([]float64, 0, 30)
	for i := 0; i < 30; i++ {
		prices = append(prices, 200-float64(i)*2)
	}
	sig := EvaluateRSI(seriesFrom(prices...), rsiCfg())
	require.True(t, sig.HasValue)
	assert.False(t, sig.Skip)
	assert.True(t, sig.Oversold)
}

func TestEvaluateRSI_InsufficientDataIsNeutral(t *testing.T) {
	sig := EvaluateRSI(seriesFrom(100, 101, 102), rsiCfg())
	assert.False(t, sig.HasValue)
	assert.False(t, sig.Skip)
	assert.Contains(t, sig.Reason, "insufficient")
}

func dipCfg() config.MADipConfig {
	return config.MADipConfig{
		Enabled:       true,
		Type:          "SMA",
		Periods:       []int{5, 10},
		DipThresholds: []float64{2, 5},
	}
}

func flatSeries(price float64, n int) []model.PricePoint {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return seriesFrom(prices...)
}

func TestEvaluateDips_NoDipMeansUnitMultiplier(t *testing.T) {
	a := EvaluateDips(flatSeries(100, 20), 100, dipCfg())
	assert.Equal(t, 1.0, a.Multiplier)
	assert.Zero(t, a.Breached)
}

func TestEvaluateDips_DepthBuckets(t *testing.T) {
	cfg := config.MADipConfig{Enabled: true, Type: "SMA", Periods: []int{5}, DipThresholds: []float64{2}}
	series := flatSeries(100, 20)

	cases := []struct {
		price float64
		want  float64
	}{
		{97, 1.5},  // 3% dip -> moderate
		{93, 2.0},  // 7% dip -> strong
		{85, 2.5},  // 15% dip -> extreme
		{99.5, 1.0}, // 0.5% dip, below threshold
	}
	for _, tc := range cases {
		a := EvaluateDips(series, tc.price, cfg)
		assert.InDelta(t, tc.want, a.Multiplier, 1e-9, "price %v", tc.price)
	}
}

func TestEvaluateDips_MultipleBreachesBumpMultiplier(t *testing.T) {
	series := flatSeries(100, 20)

	one := EvaluateDips(series, 97, dipCfg())   // 3%: breaches the 2% level only
	both := EvaluateDips(series, 94, dipCfg())  // 6%: breaches both levels
	require.Equal(t, 1, one.Breached)
	require.Equal(t, 2, both.Breached)
	assert.Greater(t, both.Multiplier, one.Multiplier)
	assert.LessOrEqual(t, both.Multiplier, 2.5)
}

func TestEvaluateDips_MonotonicInDepth(t *testing.T) {
	series := flatSeries(100, 20)
	prev := 0.0
	for price := 100.0; price >= 80; price -= 0.5 {
		a := EvaluateDips(series, price, dipCfg())
		assert.GreaterOrEqual(t, a.Multiplier, prev, "price %v", price)
		prev = a.Multiplier
	}
}

func TestEvaluateDips_InsufficientHistoryIgnoresLevel(t *testing.T) {
	cfg := config.MADipConfig{Enabled: true, Type: "SMA", Periods: []int{5, 200}, DipThresholds: []float64{2, 10}}
	a := EvaluateDips(flatSeries(100, 20), 90, cfg)
	require.Len(t, a.Signals, 1) // MA200 dropped
	assert.Equal(t, 5, a.Signals[0].Period)
	assert.Equal(t, 1, a.Breached)
}
