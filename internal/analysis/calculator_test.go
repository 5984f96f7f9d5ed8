package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vixmon/internal/config"
	"vixmon/internal/curve"
	"vixmon/internal/model"
)

var testCfg = config.AnalysisConfig{
	SteepThreshold:        3.0,
	StrongSignalThreshold: 5.0,
	InversionEpsilon:      0.0,
}

func mustCurve(t *testing.T, spot float64, quotes ...model.ContractQuote) *curve.Curve {
	t.Helper()
	c, err := curve.New(spot, quotes)
	require.NoError(t, err)
	return c
}

func quote(symbol string, price float64, days int) model.ContractQuote {
	return model.ContractQuote{Symbol: symbol, Price: price, DaysToExpiration: days}
}

func TestCompute_SteepContangoScenario(t *testing.T) {
	calc := NewCalculator(testCfg)
	c := mustCurve(t, 14.93,
		quote("VX/Q5", 17.88, 21),
		quote("VX/U5", 19.79, 49),
	)

	record := calc.Compute(c, time.Date(2025, 8, 1, 16, 0, 0, 0, time.UTC))

	require.NotNil(t, record.SpotToFront)
	assert.InDelta(t, 2.95, *record.SpotToFront, 1e-9)
	require.NotNil(t, record.FrontToSecond)
	assert.InDelta(t, 1.91, *record.FrontToSecond, 1e-9)

	require.NotNil(t, record.RollCarry)
	// weight = (30-21)/(49-21) = 0.3214; synthetic = 17.88 + 0.3214*1.91
	assert.InDelta(t, 18.494, record.RollCarry.SyntheticIndex, 0.001)
	assert.InDelta(t, record.RollCarry.SyntheticIndex-14.93, record.RollCarry.RollPoints, 1e-9)
	assert.Equal(t, "VX/Q5 to VX/U5", record.RollCarry.ContractsUsed)

	assert.Equal(t, model.ShapeSteepContango, record.CurveShape)
	assert.Equal(t, model.SignalStrongContango, record.TradingSignal)
	assert.Empty(t, record.Inversions)
	assert.Equal(t, "2025-08-01", record.DateOnly)
}

func TestCompute_EmptyCurve(t *testing.T) {
	calc := NewCalculator(testCfg)
	record := calc.Compute(mustCurve(t, 22.5), time.Now())

	assert.Equal(t, model.ShapeUnknown, record.CurveShape)
	assert.Equal(t, model.SignalNeutral, record.TradingSignal)
	assert.Nil(t, record.SpotToFront)
	assert.Nil(t, record.FrontToSecond)
	assert.Nil(t, record.RollCarry)
	assert.Empty(t, record.Inversions)
}

func TestCompute_SingleContract(t *testing.T) {
	calc := NewCalculator(testCfg)
	record := calc.Compute(mustCurve(t, 15.0, quote("VX/Q5", 17.0, 21)), time.Now())

	require.NotNil(t, record.SpotToFront)
	assert.Nil(t, record.FrontToSecond)
	assert.Nil(t, record.RollCarry)
	assert.Equal(t, model.ShapeMixed, record.CurveShape)
}

func TestCompute_DegenerateCurve(t *testing.T) {
	calc := NewCalculator(testCfg)
	record := calc.Compute(mustCurve(t, 15.0,
		quote("VX/Q5", 17.0, 21),
		quote("VX/U5", 18.0, 21),
	), time.Now())

	assert.Nil(t, record.RollCarry)
	assert.True(t, record.DegenerateCurve)
	require.NotNil(t, record.FrontToSecond)
	assert.InDelta(t, 1.0, *record.FrontToSecond, 1e-9)
}

func TestCompute_Backwardation(t *testing.T) {
	calc := NewCalculator(testCfg)
	record := calc.Compute(mustCurve(t, 32.0,
		quote("VX/Q5", 29.0, 21),
		quote("VX/U5", 27.5, 49),
	), time.Now())

	assert.Equal(t, model.ShapeInverted, record.CurveShape)
	assert.Equal(t, model.SignalStrongBackwardation, record.TradingSignal)

	// Two inversions: the adjacent futures pair and spot versus front.
	require.Len(t, record.Inversions, 2)
	assert.Equal(t, model.InversionFutures, record.Inversions[0].Type)
	assert.InDelta(t, 1.5, record.Inversions[0].Magnitude, 1e-9)
	assert.Equal(t, model.InversionSpot, record.Inversions[1].Type)
	assert.InDelta(t, 3.0, record.Inversions[1].Magnitude, 1e-9)
}

func TestCompute_BackwardationWithoutInversion(t *testing.T) {
	// With a large epsilon the downward slopes no longer count as
	// inversions, so the both-negative rule classifies the same curve.
	cfg := testCfg
	cfg.InversionEpsilon = 10.0
	calc := NewCalculator(cfg)
	record := calc.Compute(mustCurve(t, 32.0,
		quote("VX/Q5", 29.0, 21),
		quote("VX/U5", 27.5, 49),
	), time.Now())

	assert.Empty(t, record.Inversions)
	assert.Equal(t, model.ShapeBackwardation, record.CurveShape)
}

func TestCompute_MildContango(t *testing.T) {
	calc := NewCalculator(testCfg)
	record := calc.Compute(mustCurve(t, 17.0,
		quote("VX/Q5", 17.8, 21),
		quote("VX/U5", 18.3, 49),
	), time.Now())

	// Spread sum 1.8 stays under the steep threshold.
	assert.Equal(t, model.ShapeContango, record.CurveShape)
}

func TestRollCarry_ScaleInvariance(t *testing.T) {
	calc := NewCalculator(testCfg)
	base := calc.Compute(mustCurve(t, 14.93,
		quote("VX/Q5", 17.88, 21),
		quote("VX/U5", 19.79, 49),
	), time.Now())
	doubled := calc.Compute(mustCurve(t, 2*14.93,
		quote("VX/Q5", 2*17.88, 21),
		quote("VX/U5", 2*19.79, 49),
	), time.Now())

	require.NotNil(t, base.RollCarry)
	require.NotNil(t, doubled.RollCarry)
	assert.InDelta(t, 2*base.RollCarry.RollPoints, doubled.RollCarry.RollPoints, 1e-9)
	assert.InDelta(t, base.RollCarry.RollPct, doubled.RollCarry.RollPct, 1e-9)
}

func TestRollCarry_WeightClamped(t *testing.T) {
	calc := NewCalculator(testCfg)

	// Front already beyond 30 days: weight clamps to 0, synthetic = front.
	record := calc.Compute(mustCurve(t, 15.0,
		quote("VX/Q5", 17.0, 35),
		quote("VX/U5", 18.0, 63),
	), time.Now())
	require.NotNil(t, record.RollCarry)
	assert.InDelta(t, 17.0, record.RollCarry.SyntheticIndex, 1e-9)

	// Second inside 30 days: weight clamps to 1, synthetic = second.
	record = calc.Compute(mustCurve(t, 15.0,
		quote("VX/Q5", 17.0, 7),
		quote("VX/U5", 18.0, 21),
	), time.Now())
	require.NotNil(t, record.RollCarry)
	assert.InDelta(t, 18.0, record.RollCarry.SyntheticIndex, 1e-9)
}

func TestSignal_StrongCutoff(t *testing.T) {
	cfg := testCfg
	cfg.StrongSignalThreshold = 100.0 // out of reach
	calc := NewCalculator(cfg)
	record := calc.Compute(mustCurve(t, 14.93,
		quote("VX/Q5", 17.88, 21),
		quote("VX/U5", 19.79, 49),
	), time.Now())

	assert.Equal(t, model.ShapeSteepContango, record.CurveShape)
	assert.Equal(t, model.SignalContango, record.TradingSignal)
}
