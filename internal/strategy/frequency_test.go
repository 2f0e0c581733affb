package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

func dynCfg() config.DynamicFrequencyConfig {
	return config.DynamicFrequencyConfig{Enabled: true, LowVolThreshold: 25, HighVolThreshold: 50}
}

func TestClassifyRegime(t *testing.T) {
	cfg := dynCfg()
	assert.Equal(t, RegimeLow, ClassifyRegime(10, cfg))
	assert.Equal(t, RegimeMedium, ClassifyRegime(25, cfg))
	assert.Equal(t, RegimeMedium, ClassifyRegime(40, cfg))
	assert.Equal(t, RegimeHigh, ClassifyRegime(50, cfg))
	assert.Equal(t, RegimeHigh, ClassifyRegime(120, cfg))
}

func TestAdviseFrequency_LowVolGoesMonthly(t *testing.T) {
	adv := AdviseFrequency(volSample(10), model.FreqWeekly, dynCfg())
	assert.Equal(t, model.FreqMonthly, adv.Recommended)
	assert.True(t, adv.Changed)
	// weekly -> monthly: fewer trades, each 30/7 as large, capped at 3
	assert.InDelta(t, 3.0, adv.Rescale, 1e-9)
}

func TestAdviseFrequency_HighVolGoesDaily(t *testing.T) {
	adv := AdviseFrequency(volSample(90), model.FreqWeekly, dynCfg())
	assert.Equal(t, model.FreqDaily, adv.Recommended)
	assert.True(t, adv.Changed)
	// weekly -> daily: per-trade amount divided by ~7, floored at 0.3
	assert.InDelta(t, 0.3, adv.Rescale, 1e-9)
}

func TestAdviseFrequency_MediumKeepsCurrent(t *testing.T) {
	adv := AdviseFrequency(volSample(35), model.FreqMonthly, dynCfg())
	assert.Equal(t, model.FreqMonthly, adv.Recommended)
	assert.False(t, adv.Changed)
	assert.Equal(t, 1.0, adv.Rescale)
}

func TestAdviseFrequency_NoSampleKeepsCurrent(t *testing.T) {
	adv := AdviseFrequency(nil, model.FreqDaily, dynCfg())
	assert.Equal(t, model.FreqDaily, adv.Recommended)
	assert.False(t, adv.Changed)
}
