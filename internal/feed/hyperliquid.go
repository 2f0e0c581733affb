package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Holic101/hyperliquid-dca-bot/internal/httpx"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// HyperliquidSource fetches prices from the Hyperliquid info endpoint.
type HyperliquidSource struct {
	BaseURL string
	Client  *httpx.Client
}

// NewHyperliquidSource creates a source against the given API base URL.
func NewHyperliquidSource(baseURL string, client *httpx.Client) *HyperliquidSource {
	return &HyperliquidSource{BaseURL: baseURL, Client: client}
}

func (s *HyperliquidSource) Name() string { return "hyperliquid" }

func (s *HyperliquidSource) infoURL() string { return s.BaseURL + "/info" }

// hlCandle is one entry of a candleSnapshot response. Numeric fields arrive
// as strings.
type hlCandle struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Close     string `json:"c"`
}

func (s *HyperliquidSource) HistoricalPrices(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	req := map[string]any{
		"type": "candleSnapshot",
		"req": map[string]any{
			"coin":      symbol,
			"interval":  "1d",
			"startTime": start.UnixMilli(),
			"endTime":   end.UnixMilli(),
		},
	}

	var candles []hlCandle
	if err := s.Client.PostJSON(ctx, s.infoURL(), req, &candles); err != nil {
		return nil, fmt.Errorf("%w: hyperliquid candles for %s: %v", ErrDataUnavailable, symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: hyperliquid returned no candles for %s", ErrDataUnavailable, symbol)
	}

	points := make([]model.PricePoint, 0, len(candles))
	for _, c := range candles {
		price, err := strconv.ParseFloat(c.Close, 64)
		if err != nil || price <= 0 {
			continue
		}
		points = append(points, model.PricePoint{
			Time:  time.UnixMilli(c.OpenTime).UTC(),
			Price: price,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no parseable candles for %s", ErrDataUnavailable, symbol)
	}
	return model.NormalizeSeries(points), nil
}

func (s *HyperliquidSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	var mids map[string]string
	if err := s.Client.PostJSON(ctx, s.infoURL(), map[string]string{"type": "allMids"}, &mids); err != nil {
		return 0, fmt.Errorf("%w: hyperliquid mids: %v", ErrDataUnavailable, err)
	}
	raw, ok := mids[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no mid price for %s", ErrDataUnavailable, symbol)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("%w: bad mid price %q for %s", ErrDataUnavailable, raw, symbol)
	}
	return price, nil
}
