package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Holic101/hyperliquid-dca-bot/internal/httpx"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// CoinGeckoSource fetches prices from the CoinGecko public API. It serves as
// a secondary source next to the exchange's own feed.
type CoinGeckoSource struct {
	BaseURL string
	Client  *httpx.Client
	// IDMap maps exchange symbols to CoinGecko coin ids.
	IDMap map[string]string
}

// NewCoinGeckoSource creates a source with the default symbol mapping.
func NewCoinGeckoSource(baseURL string, client *httpx.Client) *CoinGeckoSource {
	return &CoinGeckoSource{
		BaseURL: baseURL,
		Client:  client,
		IDMap: map[string]string{
			"UBTC": "bitcoin",
			"BTC":  "bitcoin",
			"UETH": "ethereum",
			"ETH":  "ethereum",
			"USOL": "solana",
			"SOL":  "solana",
		},
	}
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

func (s *CoinGeckoSource) coinID(symbol string) string {
	if id, ok := s.IDMap[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (s *CoinGeckoSource) HistoricalPrices(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily",
		s.BaseURL, s.coinID(symbol), days)

	var chart marketChart
	if err := s.Client.GetJSON(ctx, url, &chart); err != nil {
		return nil, fmt.Errorf("%w: coingecko chart for %s: %v", ErrDataUnavailable, symbol, err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("%w: coingecko returned no prices for %s", ErrDataUnavailable, symbol)
	}

	points := make([]model.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if p[1] <= 0 {
			continue
		}
		points = append(points, model.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no usable prices for %s", ErrDataUnavailable, symbol)
	}
	return model.NormalizeSeries(points), nil
}

type simplePrice map[string]map[string]float64

func (s *CoinGeckoSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	id := s.coinID(symbol)
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", s.BaseURL, id)

	var resp simplePrice
	if err := s.Client.GetJSON(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("%w: coingecko price for %s: %v", ErrDataUnavailable, symbol, err)
	}
	price := resp[id]["usd"]
	if price <= 0 {
		return 0, fmt.Errorf("%w: coingecko has no usd price for %s", ErrDataUnavailable, symbol)
	}
	return price, nil
}
