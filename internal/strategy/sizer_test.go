package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

func sizerCfg() config.AssetConfig {
	return config.AssetConfig{
		Symbol:           "UBTC",
		BaseAmount:       50,
		MinAmount:        100,
		MaxAmount:        500,
		LowVolThreshold:  30,
		HighVolThreshold: 100,
	}
}

func volSample(v float64) *model.VolatilitySample {
	return &model.VolatilitySample{WindowDays: 30, Annualized: v}
}

func TestSize_NoVolatilityFallsBackToBase(t *testing.T) {
	cfg := sizerCfg()
	assert.Equal(t, cfg.BaseAmount, Size(nil, cfg))
}

func TestSize_LowVolatilityUsesMax(t *testing.T) {
	cfg := sizerCfg()
	assert.Equal(t, cfg.MaxAmount, Size(volSample(20), cfg))
	assert.Equal(t, cfg.MaxAmount, Size(volSample(30), cfg)) // boundary inclusive
}

func TestSize_HighVolatilityUsesMin(t *testing.T) {
	cfg := sizerCfg()
	assert.Equal(t, cfg.MinAmount, Size(volSample(150), cfg))
	assert.Equal(t, cfg.MinAmount, Size(volSample(100), cfg)) // boundary inclusive
}

func TestSize_LinearInterpolation(t *testing.T) {
	// factor = (100-65)/(100-30) = 0.5 -> 100 + 0.5*400 = 300
	cfg := sizerCfg()
	assert.InDelta(t, 300, Size(volSample(65), cfg), 1e-9)
}

func TestSize_MonotonicallyNonIncreasing(t *testing.T) {
	cfg := sizerCfg()
	prev := Size(volSample(0), cfg)
	for v := 1.0; v <= 160; v++ {
		cur := Size(volSample(v), cfg)
		assert.LessOrEqual(t, cur, prev, "volatility %v", v)
		assert.GreaterOrEqual(t, cur, cfg.MinAmount)
		assert.LessOrEqual(t, cur, cfg.MaxAmount)
		prev = cur
	}
}
