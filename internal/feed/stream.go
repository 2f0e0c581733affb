package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// MidStream maintains a live cache of mid prices from the Hyperliquid
// websocket allMids channel. It reconnects with backoff until its context is
// cancelled. Cached prices older than TTL are treated as unavailable so a
// stalled stream degrades to the REST sources instead of serving stale data.
type MidStream struct {
	URL string
	TTL time.Duration

	mu    sync.RWMutex
	mids  map[string]float64
	asOf  time.Time
}

// NewMidStream creates a stream client for the given websocket URL.
func NewMidStream(url string) *MidStream {
	return &MidStream{
		URL:  url,
		TTL:  15 * time.Second,
		mids: make(map[string]float64),
	}
}

func (s *MidStream) Name() string { return "ws-mids" }

// Run connects and consumes mid updates until ctx is cancelled.
func (s *MidStream) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := s.connectAndRead(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Dur("backoff", backoff).Msg("mid stream disconnected, reconnecting")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

type wsMessage struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

func (s *MidStream) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}
	defer conn.Close()

	sub := map[string]any{
		"method":       "subscribe",
		"subscription": map[string]string{"type": "allMids"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Info().Str("url", s.URL).Msg("mid stream connected")

	// Close the connection when ctx ends so ReadMessage unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Channel != "allMids" {
			continue
		}
		s.update(msg.Data.Mids)
	}
}

func (s *MidStream) update(raw map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sym, v := range raw {
		if price, err := strconv.ParseFloat(v, 64); err == nil && price > 0 {
			s.mids[sym] = price
		}
	}
	s.asOf = time.Now()
}

// CurrentPrice returns the cached mid if it is fresh enough.
func (s *MidStream) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if time.Since(s.asOf) > s.TTL {
		return 0, fmt.Errorf("%w: mid stream stale for %s", ErrDataUnavailable, symbol)
	}
	price, ok := s.mids[symbol]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%w: no streamed mid for %s", ErrDataUnavailable, symbol)
	}
	return price, nil
}

// HistoricalPrices is not served by the stream.
func (s *MidStream) HistoricalPrices(context.Context, string, int) ([]model.PricePoint, error) {
	return nil, fmt.Errorf("%w: mid stream carries no history", ErrDataUnavailable)
}
