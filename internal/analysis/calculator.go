package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"vixmon/internal/config"
	"vixmon/internal/curve"
	"vixmon/internal/model"
)

// ErrDegenerateCurve marks a curve whose front and second contracts share the
// same expiration, making the 30-day interpolation undefined. It is handled
// locally: roll carry stays nil and the record is flagged.
var ErrDegenerateCurve = errors.New("front and second contracts share days to expiration")

// Calculator computes the term structure metrics for one session. Thresholds
// are injected at construction; Compute itself is a pure function of its
// arguments.
type Calculator struct {
	cfg config.AnalysisConfig
}

// NewCalculator creates a Calculator with the given thresholds.
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute turns a normalized curve into a full AnalysisRecord. An empty curve
// yields a valid record with shape Unknown and nil metrics rather than an
// error, so upstream feed failures degrade instead of aborting the run.
func (c *Calculator) Compute(cv *curve.Curve, timestamp time.Time) model.AnalysisRecord {
	record := model.AnalysisRecord{
		Timestamp: timestamp,
		DateOnly:  model.DateOnly(timestamp),
		SpotVIX:   cv.Spot(),
		Contracts: cv.Contracts(),
	}

	if cv.Len() == 0 {
		record.CurveShape = model.ShapeUnknown
		record.TradingSignal = signalFor(model.ShapeUnknown, nil, c.cfg.StrongSignalThreshold)
		return record
	}

	front, _ := cv.Front()
	spotToFront := front.Price - cv.Spot()
	record.SpotToFront = &spotToFront

	if second, err := cv.Second(); err == nil {
		frontToSecond := second.Price - front.Price
		record.FrontToSecond = &frontToSecond

		rc, err := rollCarry(cv.Spot(), front, second)
		switch {
		case errors.Is(err, ErrDegenerateCurve):
			record.DegenerateCurve = true
		case err == nil:
			record.RollCarry = rc
		}
	}

	record.Inversions = c.detectInversions(cv)
	record.CurveShape = c.classify(record)
	record.TradingSignal = signalFor(record.CurveShape, record.RollCarry, c.cfg.StrongSignalThreshold)
	return record
}

// rollCarry estimates a constant 30-calendar-day synthetic index by
// time-weighted interpolation between the front and second contracts.
func rollCarry(spot float64, front, second model.ContractQuote) (*model.RollCarry, error) {
	t1 := float64(front.DaysToExpiration)
	t2 := float64(second.DaysToExpiration)
	if t1 == t2 {
		return nil, ErrDegenerateCurve
	}

	weight := (30 - t1) / (t2 - t1)
	weight = math.Max(0, math.Min(1, weight))

	synthetic := front.Price + weight*(second.Price-front.Price)
	rollPoints := synthetic - spot

	var rollPct float64
	if spot != 0 {
		rollPct = rollPoints / spot * 100
	}

	return &model.RollCarry{
		RollPoints:     rollPoints,
		SyntheticIndex: synthetic,
		RollPct:        rollPct,
		ContractsUsed:  fmt.Sprintf("%s to %s", front.Symbol, second.Symbol),
	}, nil
}

// detectInversions finds every adjacent pair priced out of order by more than
// the configured epsilon, plus the spot-versus-front pair.
func (c *Calculator) detectInversions(cv *curve.Curve) []model.Inversion {
	var inversions []model.Inversion
	contracts := cv.Contracts()

	for i := 0; i+1 < len(contracts); i++ {
		earlier, later := contracts[i], contracts[i+1]
		if earlier.Price-later.Price > c.cfg.InversionEpsilon {
			inversions = append(inversions, model.Inversion{
				Type:      model.InversionFutures,
				ContractA: earlier.Symbol,
				ContractB: later.Symbol,
				PriceA:    earlier.Price,
				PriceB:    later.Price,
				Magnitude: earlier.Price - later.Price,
			})
		}
	}

	if front, err := cv.Front(); err == nil {
		if cv.Spot()-front.Price > c.cfg.InversionEpsilon {
			inversions = append(inversions, model.Inversion{
				Type:      model.InversionSpot,
				ContractA: "VIX Spot",
				ContractB: front.Symbol,
				PriceA:    cv.Spot(),
				PriceB:    front.Price,
				Magnitude: cv.Spot() - front.Price,
			})
		}
	}

	return inversions
}

// classify applies the shape rules in order; the first match wins.
func (c *Calculator) classify(record model.AnalysisRecord) model.CurveShape {
	for _, inv := range record.Inversions {
		if inv.Type == model.InversionSpot || inv.Magnitude > c.cfg.SteepThreshold {
			return model.ShapeInverted
		}
	}

	if record.SpotToFront == nil || record.FrontToSecond == nil {
		return model.ShapeMixed
	}

	s2f, f2s := *record.SpotToFront, *record.FrontToSecond
	switch {
	case s2f > 0 && f2s > 0 && s2f+f2s > c.cfg.SteepThreshold:
		return model.ShapeSteepContango
	case s2f > 0 && f2s > 0:
		return model.ShapeContango
	case s2f < 0 && f2s < 0:
		return model.ShapeBackwardation
	default:
		return model.ShapeMixed
	}
}

// signalFor maps curve shape plus roll carry magnitude onto the signal
// enumeration. The strong cutoff escalates plain contango or backwardation.
func signalFor(shape model.CurveShape, rc *model.RollCarry, strongCutoff float64) model.TradingSignal {
	strong := rc != nil && math.Abs(rc.RollPct) >= strongCutoff

	switch shape {
	case model.ShapeSteepContango, model.ShapeContango:
		if strong {
			return model.SignalStrongContango
		}
		return model.SignalContango
	case model.ShapeBackwardation:
		if strong {
			return model.SignalStrongBackwardation
		}
		return model.SignalBackwardation
	case model.ShapeInverted:
		return model.SignalStrongBackwardation
	case model.ShapeMixed:
		return model.SignalMixed
	default:
		return model.SignalNeutral
	}
}
