package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// streamSymbols maps CoinGecko ids to ticker channel symbols.
var streamSymbols = map[string]string{
	"bitcoin":  "BTC/USD",
	"ethereum": "ETH/USD",
	"solana":   "SOL/USD",
	"tether":   "USDT/USD",
}

// ErrStreamIncomplete is returned when the stream ends before every symbol ticked.
var ErrStreamIncomplete = errors.New("ticker stream incomplete")

type subscribeRequest struct {
	Method string          `json:"method"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Channel string   `json:"channel"`
	Symbol  []string `json:"symbol"`
}

type tickerMessage struct {
	Channel string       `json:"channel"`
	Type    string       `json:"type"`
	Data    []tickerData `json:"data"`
}

type tickerData struct {
	Symbol string      `json:"symbol"`
	Last   json.Number `json:"last"`
}

// TickerStream reads one last-trade price per asset from a ticker WebSocket.
type TickerStream struct {
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewTickerStream creates a stream reader. timeout bounds one Prices call.
func NewTickerStream(url string, timeout time.Duration, logger *slog.Logger) *TickerStream {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TickerStream{
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

// Prices subscribes to the ticker channel and returns the first price seen
// for each id. It fails if any id has no symbol or does not tick in time.
func (s *TickerStream) Prices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	bySymbol := make(map[string]string, len(ids))
	symbols := make([]string, 0, len(ids))
	for _, id := range ids {
		sym, ok := streamSymbols[id]
		if !ok {
			return nil, fmt.Errorf("no ticker symbol for %s", id)
		}
		bySymbol[sym] = id
		symbols = append(symbols, sym)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ticker stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the deadline passes.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	sub := subscribeRequest{
		Method: "subscribe",
		Params: subscribeParams{Channel: "ticker", Symbol: symbols},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Debug("ticker stream subscribed", "url", s.url, "symbols", symbols)

	prices := make(map[string]decimal.Decimal, len(ids))
	for len(prices) < len(bySymbol) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %d of %d symbols: %w", ErrStreamIncomplete, len(prices), len(bySymbol), ctx.Err())
			}
			return nil, fmt.Errorf("read ticker stream: %w", err)
		}

		var msg tickerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("skipping non-json frame", "error", err)
			continue
		}
		if msg.Channel != "ticker" {
			continue
		}
		for _, d := range msg.Data {
			id, ok := bySymbol[d.Symbol]
			if !ok {
				continue
			}
			if _, seen := prices[id]; seen {
				continue
			}
			price, err := decimal.NewFromString(d.Last.String())
			if err != nil || !price.IsPositive() {
				continue
			}
			prices[id] = price
		}
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return prices, nil
}
