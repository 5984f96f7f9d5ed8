package feed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"vixmon/internal/model"
)

// FakeFeed generates a synthetic upward-sloping curve for offline runs and
// testing: six monthly contracts spaced 30 days apart above a base spot.
type FakeFeed struct {
	baseVIX float64
}

// NewFakeFeed creates a FakeFeed around a 20.0 spot level.
func NewFakeFeed() *FakeFeed {
	return &FakeFeed{baseVIX: 20.0}
}

func (f *FakeFeed) GetName() string {
	return "fake"
}

func (f *FakeFeed) Fetch(ctx context.Context) (model.QuoteSnapshot, error) {
	now := time.Now()
	snapshot := model.QuoteSnapshot{
		Timestamp: now,
		SpotVIX:   f.baseVIX,
	}

	monthCodes := []byte{'F', 'G', 'H', 'J', 'K', 'M'}
	for i := 0; i < 6; i++ {
		days := 30 + i*30
		price := f.baseVIX + float64(i)*0.3 + rand.NormFloat64()*0.2
		snapshot.Quotes = append(snapshot.Quotes, model.ContractQuote{
			Symbol:           fmt.Sprintf("VX/%c5", monthCodes[i]),
			Price:            price,
			DaysToExpiration: days,
			ExpirationDate:   now.AddDate(0, 0, days),
		})
	}
	return snapshot, nil
}
