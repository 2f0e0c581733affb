package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// MultiSource combines several price sources. The current price is the mean
// of all sources that answer; a single healthy source is enough. Historical
// prices come from the first source that answers, in configured order.
type MultiSource struct {
	Sources []Source
}

// NewMultiSource combines sources in priority order.
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{Sources: sources}
}

func (m *MultiSource) Name() string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *MultiSource) HistoricalPrices(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	var lastErr error
	for _, s := range m.Sources {
		points, err := s.HistoricalPrices(ctx, symbol, days)
		if err == nil {
			return points, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("source", s.Name()).Str("asset", symbol).
			Msg("historical price source failed, trying next")
	}
	return nil, fmt.Errorf("%w: all sources failed for %s history: %v", ErrDataUnavailable, symbol, lastErr)
}

func (m *MultiSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	var sum float64
	var ok int
	var lastErr error
	for _, s := range m.Sources {
		price, err := s.CurrentPrice(ctx, symbol)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("source", s.Name()).Str("asset", symbol).
				Msg("price source failed")
			continue
		}
		sum += price
		ok++
	}
	if ok == 0 {
		return 0, fmt.Errorf("%w: no price source succeeded for %s: %v", ErrDataUnavailable, symbol, lastErr)
	}
	return sum / float64(ok), nil
}
