package feed

import (
	"context"
	"fmt"
	"log/slog"

	"vixmon/internal/config"
	"vixmon/internal/model"
)

// Feed defines the standard interface for quote feed collaborators. A feed
// produces one snapshot per call: the spot level plus the futures quotes seen
// at the same moment.
type Feed interface {
	GetName() string
	Fetch(ctx context.Context) (model.QuoteSnapshot, error)
}

// NewFeed creates a quote feed based on the given name and configuration.
func NewFeed(logger *slog.Logger, cfg config.FeedConfig) (Feed, error) {
	switch cfg.Name {
	case "cboe":
		return NewCboeFeed(logger, cfg.URL), nil
	case "fake":
		return NewFakeFeed(), nil
	default:
		return nil, fmt.Errorf("unknown feed: %s", cfg.Name)
	}
}
