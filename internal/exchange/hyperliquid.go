package exchange

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Holic101/hyperliquid-dca-bot/internal/httpx"
)

const incrementsCacheTTL = time.Hour

// HyperliquidGateway talks to the Hyperliquid REST API for balances,
// asset metadata and order placement.
type HyperliquidGateway struct {
	client  *httpx.Client
	baseURL string
	wallet  string
	secret  string
	log     zerolog.Logger

	mu        sync.Mutex
	incCache  map[string]Increments
	incCached time.Time
}

func NewHyperliquidGateway(client *httpx.Client, baseURL, wallet, secret string, log zerolog.Logger) *HyperliquidGateway {
	return &HyperliquidGateway{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		wallet:   wallet,
		secret:   secret,
		log:      log.With().Str("component", "exchange").Logger(),
		incCache: make(map[string]Increments),
	}
}

type spotBalance struct {
	Coin  string `json:"coin"`
	Total string `json:"total"`
	Hold  string `json:"hold"`
}

type spotStateResponse struct {
	Balances []spotBalance `json:"balances"`
}

func (g *HyperliquidGateway) Balance(ctx context.Context, currency string) (float64, error) {
	req := map[string]any{"type": "spotClearinghouseState", "user": g.wallet}
	var resp spotStateResponse
	if err := g.client.PostJSON(ctx, g.baseURL+"/info", req, &resp); err != nil {
		return 0, fmt.Errorf("fetch spot state: %w", err)
	}
	for _, b := range resp.Balances {
		if strings.EqualFold(b.Coin, currency) {
			total, err := strconv.ParseFloat(b.Total, 64)
			if err != nil {
				return 0, fmt.Errorf("parse %s balance %q: %w", currency, b.Total, err)
			}
			return total, nil
		}
	}
	// Absent from the response means a zero balance, not an error.
	return 0, nil
}

type spotToken struct {
	Name       string `json:"name"`
	SzDecimals int    `json:"szDecimals"`
	Index      int    `json:"index"`
}

type spotMetaResponse struct {
	Tokens []spotToken `json:"tokens"`
}

// Increments derives quantity and price steps from spot metadata.
// Quantity step is 10^-szDecimals; spot prices carry up to
// 8-szDecimals decimal places.
func (g *HyperliquidGateway) Increments(ctx context.Context, symbol string) (Increments, error) {
	g.mu.Lock()
	if inc, ok := g.incCache[symbol]; ok && time.Since(g.incCached) < incrementsCacheTTL {
		g.mu.Unlock()
		return inc, nil
	}
	g.mu.Unlock()

	req := map[string]any{"type": "spotMeta"}
	var resp spotMetaResponse
	if err := g.client.PostJSON(ctx, g.baseURL+"/info", req, &resp); err != nil {
		return Increments{}, fmt.Errorf("fetch spot meta: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.incCached = time.Now()
	for _, tok := range resp.Tokens {
		pxDecimals := 8 - tok.SzDecimals
		if pxDecimals < 0 {
			pxDecimals = 0
		}
		g.incCache[tok.Name] = Increments{
			QuantityStep: math.Pow(10, -float64(tok.SzDecimals)),
			PriceStep:    math.Pow(10, -float64(pxDecimals)),
		}
	}
	inc, ok := g.incCache[symbol]
	if !ok {
		return Increments{}, fmt.Errorf("symbol %s not in spot meta", symbol)
	}
	return inc, nil
}

type orderStatus struct {
	Filled *struct {
		TotalSz string `json:"totalSz"`
		AvgPx   string `json:"avgPx"`
		Oid     int64  `json:"oid"`
	} `json:"filled"`
	Resting *struct {
		Oid int64 `json:"oid"`
	} `json:"resting"`
	Error string `json:"error"`
}

type orderResponse struct {
	Status   string `json:"status"`
	Response struct {
		Data struct {
			Statuses []orderStatus `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

func (g *HyperliquidGateway) SubmitIOCBuy(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error) {
	action := map[string]any{
		"type": "order",
		"orders": []map[string]any{{
			"coin":       symbol,
			"isBuy":      true,
			"sz":         strconv.FormatFloat(quantity, 'f', -1, 64),
			"limitPx":    strconv.FormatFloat(limitPrice, 'f', -1, 64),
			"reduceOnly": false,
			"orderType":  map[string]any{"limit": map[string]any{"tif": "Ioc"}},
		}},
	}
	req := map[string]any{
		"action":    action,
		"nonce":     time.Now().UnixMilli(),
		"wallet":    g.wallet,
		"signature": g.secret,
	}

	var resp orderResponse
	if err := g.client.PostJSON(ctx, g.baseURL+"/exchange", req, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("submit order: %w", err)
	}
	if resp.Status != "ok" {
		return OrderResult{}, fmt.Errorf("order rejected with status %q", resp.Status)
	}
	if len(resp.Response.Data.Statuses) == 0 {
		return OrderResult{}, fmt.Errorf("order response carried no statuses")
	}

	st := resp.Response.Data.Statuses[0]
	switch {
	case st.Error != "":
		return OrderResult{}, fmt.Errorf("order rejected: %s", st.Error)
	case st.Filled != nil:
		qty, err := strconv.ParseFloat(st.Filled.TotalSz, 64)
		if err != nil {
			return OrderResult{}, fmt.Errorf("parse fill size %q: %w", st.Filled.TotalSz, err)
		}
		px, err := strconv.ParseFloat(st.Filled.AvgPx, 64)
		if err != nil {
			return OrderResult{}, fmt.Errorf("parse fill price %q: %w", st.Filled.AvgPx, err)
		}
		g.log.Info().Str("symbol", symbol).Float64("qty", qty).Float64("avg_px", px).Msg("order filled")
		return OrderResult{
			Filled:    true,
			TxID:      strconv.FormatInt(st.Filled.Oid, 10),
			AvgPrice:  px,
			FilledQty: qty,
		}, nil
	default:
		// IOC that neither filled nor errored was cancelled by the book.
		g.log.Warn().Str("symbol", symbol).Float64("limit_px", limitPrice).Msg("ioc order not filled")
		return OrderResult{Filled: false}, nil
	}
}
