package strategy

import (
	"errors"
	"fmt"

	"github.com/Holic101/hyperliquid-dca-bot/internal/calculator"
	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// RSISignal is the outcome of the RSI gate for one cycle.
type RSISignal struct {
	Value    float64
	HasValue bool
	Skip     bool // price is overbought, skip this cycle
	Oversold bool // neutral-to-positive, proceed
	Reason   string
}

// EvaluateRSI applies the overbought/oversold gate. Insufficient history is
// treated as neutral so that thin series never block a trade by themselves.
func EvaluateRSI(series []model.PricePoint, cfg config.RSIConfig) RSISignal {
	rsi, err := calculator.CalculateRSI(model.ClosePrices(series), cfg.Period)
	if err != nil {
		if errors.Is(err, calculator.ErrInsufficientData) {
			return RSISignal{Reason: "insufficient data for RSI, proceeding"}
		}
		return RSISignal{Reason: fmt.Sprintf("RSI unavailable (%v), proceeding", err)}
	}

	sig := RSISignal{Value: rsi, HasValue: true}
	switch {
	case rsi >= cfg.Overbought:
		sig.Skip = true
		sig.Reason = fmt.Sprintf("RSI overbought: %.2f >= %.2f", rsi, cfg.Overbought)
	case rsi <= cfg.Oversold:
		sig.Oversold = true
		sig.Reason = fmt.Sprintf("RSI oversold: %.2f <= %.2f", rsi, cfg.Oversold)
	default:
		sig.Reason = fmt.Sprintf("RSI neutral: %.2f", rsi)
	}
	return sig
}

// DipSignal describes a single moving-average level relative to price.
type DipSignal struct {
	Period    int
	MAValue   float64
	DipPct    float64 // percent below the MA, negative when above
	Threshold float64
	Breached  bool
}

// DipAnalysis is the combined moving-average dip view for one cycle.
type DipAnalysis struct {
	Signals    []DipSignal
	MaxDipPct  float64
	Breached   int
	Multiplier float64
}

// Multiplier buckets by dip depth (percent below the breached MA).
const (
	weakDipMult     = 1.2
	moderateDipMult = 1.5
	strongDipMult   = 2.0
	extremeDipMult  = 2.5

	// extraLevelBump is added per additional simultaneously-breached MA
	// level. Combination rule: deepest breach picks the bucket, each extra
	// breached level bumps it, capped at extremeDipMult. Deterministic and
	// monotonic in both depth and breach count.
	extraLevelBump = 0.15
)

// EvaluateDips measures how far the current price sits below each configured
// moving average and derives a position multiplier. Levels with insufficient
// history are ignored.
func EvaluateDips(series []model.PricePoint, currentPrice float64, cfg config.MADipConfig) DipAnalysis {
	analysis := DipAnalysis{Multiplier: 1.0}
	if currentPrice <= 0 {
		return analysis
	}
	maType, err := calculator.ParseMAType(cfg.Type)
	if err != nil {
		return analysis
	}
	prices := model.ClosePrices(series)

	for i, period := range cfg.Periods {
		ma, err := calculator.CalculateMA(prices, period, maType)
		if err != nil || ma <= 0 {
			continue
		}
		dipPct := (ma - currentPrice) / ma * 100
		sig := DipSignal{
			Period:    period,
			MAValue:   ma,
			DipPct:    dipPct,
			Threshold: cfg.DipThresholds[i],
			Breached:  dipPct >= cfg.DipThresholds[i],
		}
		analysis.Signals = append(analysis.Signals, sig)
		if sig.Breached {
			analysis.Breached++
			if dipPct > analysis.MaxDipPct {
				analysis.MaxDipPct = dipPct
			}
		}
	}

	if analysis.Breached == 0 {
		return analysis
	}

	var base float64
	switch {
	case analysis.MaxDipPct < 2:
		base = weakDipMult
	case analysis.MaxDipPct < 5:
		base = moderateDipMult
	case analysis.MaxDipPct < 10:
		base = strongDipMult
	default:
		base = extremeDipMult
	}
	m := base + extraLevelBump*float64(analysis.Breached-1)
	analysis.Multiplier = clamp(m, 1.0, extremeDipMult)
	return analysis
}
