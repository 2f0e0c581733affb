package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holic101/hyperliquid-dca-bot/internal/httpx"
)

func hlServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["type"] {
		case "allMids":
			json.NewEncoder(w).Encode(map[string]string{"UBTC": "65000.5", "UETH": "3400"})
		case "candleSnapshot":
			base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			candles := []map[string]any{
				{"t": base.UnixMilli(), "c": "64000"},
				{"t": base.AddDate(0, 0, 1).UnixMilli(), "c": "64500"},
				{"t": base.AddDate(0, 0, 2).UnixMilli(), "c": "65000"},
			}
			json.NewEncoder(w).Encode(candles)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func TestHyperliquidSource_CurrentPrice(t *testing.T) {
	srv := hlServer(t)
	defer srv.Close()

	src := NewHyperliquidSource(srv.URL, httpx.New(httpx.Config{MaxRetries: 1}))
	price, err := src.CurrentPrice(context.Background(), "UBTC")
	require.NoError(t, err)
	assert.Equal(t, 65000.5, price)

	_, err = src.CurrentPrice(context.Background(), "DOGE")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestHyperliquidSource_HistoricalPrices(t *testing.T) {
	srv := hlServer(t)
	defer srv.Close()

	src := NewHyperliquidSource(srv.URL, httpx.New(httpx.Config{MaxRetries: 1}))
	points, err := src.HistoricalPrices(context.Background(), "UBTC", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 64000.0, points[0].Price)
	assert.Equal(t, 65000.0, points[2].Price)
	assert.True(t, points[0].Time.Before(points[1].Time))
}
