package strategy

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Holic101/hyperliquid-dca-bot/internal/calculator"
	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// Decision is the sizing output for one asset and one cycle.
type Decision struct {
	Asset      string
	Skip       bool
	Reason     string // set when Skip is true, or annotates the sizing path
	AmountUSD  float64
	BaseAmount float64 // sizer output before indicator overlays
	Volatility *model.VolatilitySample
	RSI        RSISignal
	Dips       DipAnalysis
	Frequency  FrequencyAdvice
}

// Evaluate runs the full decision pipeline for one asset in fixed order:
// volatility sizing, RSI gate, moving-average dip multiplier, then dynamic
// frequency rescaling. The final notional is always clamped to the asset's
// configured [min, max] band; indicators never push a trade past max_amount.
//
// The series must be normalized (chronological, one point per day).
func Evaluate(series []model.PricePoint, currentPrice float64, cfg config.AssetConfig) *Decision {
	d := &Decision{
		Asset:     cfg.Symbol,
		Frequency: FrequencyAdvice{Recommended: cfg.Frequency, Rescale: 1.0},
		Dips:      DipAnalysis{Multiplier: 1.0},
	}

	vol, err := calculator.ComputeVolatility(series, cfg.VolatilityWindow)
	if err != nil && !errors.Is(err, calculator.ErrInsufficientData) {
		// Programming/config error, not a data gap. Still non-fatal for the
		// cycle: fall through with no sample, same as insufficient data.
		log.Warn().Err(err).Str("asset", cfg.Symbol).Msg("volatility computation failed")
	}
	d.Volatility = vol

	d.BaseAmount = Size(vol, cfg)
	d.AmountUSD = d.BaseAmount

	if cfg.RSI.Enabled {
		d.RSI = EvaluateRSI(series, cfg.RSI)
		if d.RSI.Skip {
			d.Skip = true
			d.Reason = d.RSI.Reason
			log.Info().
				Str("asset", cfg.Symbol).
				Float64("rsi", d.RSI.Value).
				Msg("trade skipped by RSI gate")
			return d
		}
	}

	if cfg.MADips.Enabled {
		d.Dips = EvaluateDips(series, currentPrice, cfg.MADips)
		if d.Dips.Multiplier > 1.0 {
			d.AmountUSD = clamp(d.AmountUSD*d.Dips.Multiplier, cfg.MinAmount, cfg.MaxAmount)
		}
	}

	if cfg.DynamicFrequency.Enabled {
		d.Frequency = AdviseFrequency(vol, cfg.Frequency, cfg.DynamicFrequency)
		if d.Frequency.Changed {
			d.AmountUSD = clamp(d.AmountUSD*d.Frequency.Rescale, cfg.MinAmount, cfg.MaxAmount)
		}
	}

	d.Reason = describeSizing(d)
	log.Info().
		Str("asset", cfg.Symbol).
		Float64("amount_usd", d.AmountUSD).
		Float64("base_amount", d.BaseAmount).
		Float64("dip_multiplier", d.Dips.Multiplier).
		Str("frequency", d.Frequency.Recommended.String()).
		Msg("sizing decision")
	return d
}

func describeSizing(d *Decision) string {
	volPart := "volatility unavailable, base amount"
	if d.Volatility != nil {
		volPart = fmt.Sprintf("volatility %.1f%%", d.Volatility.Annualized)
	}
	s := fmt.Sprintf("%s -> $%.2f", volPart, d.BaseAmount)
	if d.Dips.Multiplier > 1.0 {
		s += fmt.Sprintf(", dip x%.2f (%.1f%% below MA, %d level(s))",
			d.Dips.Multiplier, d.Dips.MaxDipPct, d.Dips.Breached)
	}
	if d.Frequency.Changed {
		s += fmt.Sprintf(", frequency %s x%.2f", d.Frequency.Recommended, d.Frequency.Rescale)
	}
	return s
}
