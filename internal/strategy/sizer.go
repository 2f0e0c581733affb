package strategy

import (
	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// Size maps a volatility sample to a notional amount. A nil sample means the
// volatility engine had insufficient data; the configured base amount is the
// explicit fallback, so sizing never fails a trade on its own.
//
// Low volatility buys the maximum, high volatility the minimum, and the band
// in between interpolates linearly.
func Size(vol *model.VolatilitySample, cfg config.AssetConfig) float64 {
	if vol == nil {
		return cfg.BaseAmount
	}
	v := vol.Annualized
	switch {
	case v <= cfg.LowVolThreshold:
		return cfg.MaxAmount
	case v >= cfg.HighVolThreshold:
		return cfg.MinAmount
	}
	factor := (cfg.HighVolThreshold - v) / (cfg.HighVolThreshold - cfg.LowVolThreshold)
	amount := cfg.MinAmount + (cfg.MaxAmount-cfg.MinAmount)*factor
	return clamp(amount, cfg.MinAmount, cfg.MaxAmount)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
