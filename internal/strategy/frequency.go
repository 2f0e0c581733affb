package strategy

import (
	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// VolRegime classifies annualized volatility against configured thresholds.
type VolRegime string

const (
	RegimeLow    VolRegime = "low"
	RegimeMedium VolRegime = "medium"
	RegimeHigh   VolRegime = "high"
)

// ClassifyRegime buckets a volatility value.
func ClassifyRegime(vol float64, cfg config.DynamicFrequencyConfig) VolRegime {
	switch {
	case vol < cfg.LowVolThreshold:
		return RegimeLow
	case vol < cfg.HighVolThreshold:
		return RegimeMedium
	default:
		return RegimeHigh
	}
}

// FrequencyAdvice is the dynamic-frequency recommendation for one cycle.
type FrequencyAdvice struct {
	Regime      VolRegime
	Recommended model.Frequency
	Changed     bool
	// Rescale keeps the expected monthly exposure roughly constant when
	// the cadence changes: newIntervalDays / oldIntervalDays, so switching
	// weekly -> daily divides the per-trade notional by ~7.
	Rescale float64
}

const (
	minRescale = 0.3
	maxRescale = 3.0
)

// AdviseFrequency maps the volatility regime to a cadence: calm markets trade
// monthly, turbulent ones daily, and the medium regime keeps the configured
// frequency. When no volatility sample is available the current frequency is
// kept unchanged.
func AdviseFrequency(vol *model.VolatilitySample, current model.Frequency, cfg config.DynamicFrequencyConfig) FrequencyAdvice {
	advice := FrequencyAdvice{Regime: RegimeMedium, Recommended: current, Rescale: 1.0}
	if vol == nil {
		return advice
	}

	advice.Regime = ClassifyRegime(vol.Annualized, cfg)
	switch advice.Regime {
	case RegimeLow:
		advice.Recommended = model.FreqMonthly
	case RegimeHigh:
		advice.Recommended = model.FreqDaily
	default:
		advice.Recommended = current
	}

	if advice.Recommended != current {
		advice.Changed = true
		advice.Rescale = float64(advice.Recommended.Days()) / float64(current.Days())
		if advice.Rescale < minRescale {
			advice.Rescale = minRescale
		}
		if advice.Rescale > maxRescale {
			advice.Rescale = maxRescale
		}
	}
	return advice
}
