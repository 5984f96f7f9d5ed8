package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"vixmon/internal/model"
)

// CboeFeed streams delayed VIX quotes over a websocket gateway and returns
// the first complete snapshot it receives.
type CboeFeed struct {
	logger *slog.Logger
	url    string
}

// NewCboeFeed creates a new CboeFeed pointed at the given gateway URL.
func NewCboeFeed(logger *slog.Logger, url string) *CboeFeed {
	return &CboeFeed{logger: logger, url: url}
}

func (f *CboeFeed) GetName() string {
	return "cboe"
}

// snapshotMessage is the gateway wire format for one quote snapshot.
type snapshotMessage struct {
	Timestamp time.Time `json:"timestamp"`
	SpotVIX   float64   `json:"spot_vix"`
	Contracts []struct {
		Symbol           string  `json:"symbol"`
		Price            float64 `json:"price"`
		DaysToExpiration int     `json:"days_to_expiration"`
		ExpirationDate   string  `json:"expiration_date"`
	} `json:"contracts"`
}

// Fetch connects to the gateway, subscribes to the VIX snapshot channel and
// blocks until one complete snapshot arrives. Connection failures retry with
// capped exponential backoff until the context is cancelled.
func (f *CboeFeed) Fetch(ctx context.Context) (model.QuoteSnapshot, error) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return model.QuoteSnapshot{}, ctx.Err()
		default:
		}

		f.logger.Info("CboeFeed: connecting to gateway", "url", f.url, "backoff", backoff)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			f.logger.Error("CboeFeed: connection failed", "error", err)
			select {
			case <-ctx.Done():
				return model.QuoteSnapshot{}, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > 16*time.Second {
					backoff = 16 * time.Second
				}
			}
			continue
		}

		snapshot, err := f.readSnapshot(ctx, c)
		c.Close()
		if err != nil {
			f.logger.Error("CboeFeed: stream failed, reconnecting", "error", err)
			continue
		}
		return snapshot, nil
	}
}

func (f *CboeFeed) readSnapshot(ctx context.Context, c *websocket.Conn) (model.QuoteSnapshot, error) {
	subscription := map[string]interface{}{
		"event":   "subscribe",
		"channel": "vix_snapshot",
	}
	if err := c.WriteJSON(subscription); err != nil {
		return model.QuoteSnapshot{}, fmt.Errorf("send subscription: %w", err)
	}
	f.logger.Info("CboeFeed: subscription sent")

	for {
		select {
		case <-ctx.Done():
			return model.QuoteSnapshot{}, ctx.Err()
		default:
		}

		_, message, err := c.ReadMessage()
		if err != nil {
			return model.QuoteSnapshot{}, fmt.Errorf("read message: %w", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(message, &raw); err != nil {
			f.logger.Warn("CboeFeed: failed to parse message", "error", err)
			continue
		}

		// Skip subscription confirmations and heartbeats.
		if _, ok := raw["event"]; ok {
			continue
		}

		var msg snapshotMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			f.logger.Warn("CboeFeed: failed to parse snapshot", "error", err)
			continue
		}
		if msg.SpotVIX <= 0 {
			f.logger.Warn("CboeFeed: snapshot without spot level, waiting for next")
			continue
		}

		snapshot := model.QuoteSnapshot{
			Timestamp: msg.Timestamp,
			SpotVIX:   msg.SpotVIX,
		}
		if snapshot.Timestamp.IsZero() {
			snapshot.Timestamp = time.Now()
		}

		for _, contract := range msg.Contracts {
			expiration, err := time.Parse("2006-01-02", contract.ExpirationDate)
			if err != nil {
				f.logger.Warn("CboeFeed: bad expiration date", "symbol", contract.Symbol, "value", contract.ExpirationDate)
				continue
			}
			snapshot.Quotes = append(snapshot.Quotes, model.ContractQuote{
				Symbol:           contract.Symbol,
				Price:            contract.Price,
				DaysToExpiration: contract.DaysToExpiration,
				ExpirationDate:   expiration,
			})
		}

		f.logger.Info("CboeFeed: snapshot received", "spot", snapshot.SpotVIX, "contracts", len(snapshot.Quotes))
		return snapshot, nil
	}
}
