package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vixmon/internal/config"
	"vixmon/internal/model"
)

func record(ts time.Time, spot float64, shape model.CurveShape, signal model.TradingSignal) *model.AnalysisRecord {
	return &model.AnalysisRecord{
		Timestamp:     ts,
		DateOnly:      model.DateOnly(ts),
		SpotVIX:       spot,
		CurveShape:    shape,
		TradingSignal: signal,
		RollCarry:     &model.RollCarry{RollPct: 10.0},
	}
}

func TestCompare_NoPrevious(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	current := record(time.Now(), 15.38, model.ShapeContango, model.SignalContango)

	result := comparer.Compare(current, nil)

	assert.False(t, result.HasPrevious)
	assert.Nil(t, result.DaysSincePrevious)
	assert.Nil(t, result.Changes.SpotVIX)
	assert.Nil(t, result.Changes.RollCarryPct)
	assert.Nil(t, result.Changes.CurveShape)
	assert.Nil(t, result.Changes.TradingSignal)
	assert.Empty(t, result.Changes.Contracts)
	assert.Equal(t, "No previous data available for comparison", result.Changes.Summary)
}

func TestCompare_WithSelf(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	ts := time.Date(2025, 8, 4, 16, 0, 0, 0, time.UTC)
	rec := record(ts, 15.38, model.ShapeContango, model.SignalContango)
	rec.Contracts = []model.ContractQuote{{Symbol: "VX/Q5", Price: 17.88}}

	result := comparer.Compare(rec, rec)

	assert.True(t, result.HasPrevious)
	require.NotNil(t, result.DaysSincePrevious)
	assert.Equal(t, 0, *result.DaysSincePrevious)

	require.NotNil(t, result.Changes.SpotVIX)
	assert.Zero(t, result.Changes.SpotVIX.Absolute)
	assert.Equal(t, model.DirectionUnchanged, result.Changes.SpotVIX.Direction)
	require.NotNil(t, result.Changes.RollCarryPct)
	assert.Zero(t, result.Changes.RollCarryPct.Absolute)
	assert.False(t, result.Changes.CurveShape.Changed)
	assert.False(t, result.Changes.TradingSignal.Changed)

	require.Len(t, result.Changes.Contracts, 1)
	assert.Equal(t, model.DirectionUnchanged, result.Changes.Contracts[0].Direction)
	assert.Contains(t, result.Changes.Summary, "VIX unchanged at 15.38")
}

func TestCompare_SpotChangeScenario(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	previous := record(time.Date(2025, 8, 1, 16, 0, 0, 0, time.UTC), 14.93, model.ShapeContango, model.SignalContango)
	current := record(time.Date(2025, 8, 4, 16, 0, 0, 0, time.UTC), 15.38, model.ShapeSteepContango, model.SignalStrongContango)

	result := comparer.Compare(current, previous)

	change := result.Changes.SpotVIX
	require.NotNil(t, change)
	assert.InDelta(t, 0.45, change.Absolute, 1e-9)
	require.NotNil(t, change.Percentage)
	assert.InDelta(t, 3.01, *change.Percentage, 0.01)
	assert.Equal(t, model.DirectionUp, change.Direction)

	// Friday to Monday reports the raw three-day gap.
	require.NotNil(t, result.DaysSincePrevious)
	assert.Equal(t, 3, *result.DaysSincePrevious)

	assert.True(t, result.Changes.CurveShape.Changed)
	assert.Equal(t, string(model.ShapeContango), result.Changes.CurveShape.From)
	assert.Equal(t, string(model.ShapeSteepContango), result.Changes.CurveShape.To)

	assert.Contains(t, result.Changes.Summary, "VIX up 0.45 points")
	assert.Contains(t, result.Changes.Summary, "3 days ago")
	assert.Contains(t, result.Changes.Summary, "Curve changed from Contango to SteepContango")
}

func TestCompare_ZeroPreviousGuard(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	previous := record(time.Now().AddDate(0, 0, -1), 0, model.ShapeUnknown, model.SignalNeutral)
	current := record(time.Now(), 15.0, model.ShapeContango, model.SignalContango)

	result := comparer.Compare(current, previous)

	require.NotNil(t, result.Changes.SpotVIX)
	assert.Nil(t, result.Changes.SpotVIX.Percentage)
	assert.Equal(t, model.DirectionUp, result.Changes.SpotVIX.Direction)
}

func TestCompare_ContractMatching(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	previous := record(time.Now().AddDate(0, 0, -1), 15.0, model.ShapeContango, model.SignalContango)
	previous.Contracts = []model.ContractQuote{
		{Symbol: "VX/N5", Price: 16.50}, // rolled off
		{Symbol: "VX/Q5", Price: 17.40},
	}
	current := record(time.Now(), 15.2, model.ShapeContango, model.SignalContango)
	current.Contracts = []model.ContractQuote{
		{Symbol: "VX/Q5", Price: 17.88},
		{Symbol: "VX/U5", Price: 19.79}, // newly listed
	}

	result := comparer.Compare(current, previous)

	require.Len(t, result.Changes.Contracts, 1)
	change := result.Changes.Contracts[0]
	assert.Equal(t, "VX/Q5", change.Symbol)
	assert.InDelta(t, 0.48, change.Absolute, 1e-9)
	assert.Equal(t, model.DirectionUp, change.Direction)
}

func TestCompare_ChangeEpsilon(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{ChangeEpsilon: 0.1})
	previous := record(time.Now().AddDate(0, 0, -1), 15.00, model.ShapeContango, model.SignalContango)
	current := record(time.Now(), 15.05, model.ShapeContango, model.SignalContango)

	result := comparer.Compare(current, previous)

	// A move inside the epsilon band counts as unchanged.
	assert.Equal(t, model.DirectionUnchanged, result.Changes.SpotVIX.Direction)
	assert.InDelta(t, 0.05, result.Changes.SpotVIX.Absolute, 1e-9)
}

func TestCompare_MissingRollCarry(t *testing.T) {
	comparer := NewComparer(config.AnalysisConfig{})
	previous := record(time.Now().AddDate(0, 0, -1), 15.0, model.ShapeContango, model.SignalContango)
	current := record(time.Now(), 15.2, model.ShapeContango, model.SignalContango)
	current.RollCarry = nil

	result := comparer.Compare(current, previous)
	assert.Nil(t, result.Changes.RollCarryPct)
}
