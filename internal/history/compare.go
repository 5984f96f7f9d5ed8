package history

import (
	"fmt"
	"math"
	"strings"
	"time"

	"vixmon/internal/config"
	"vixmon/internal/model"
)

// Comparer computes day-over-day changes between two analysis records.
type Comparer struct {
	cfg config.AnalysisConfig
}

// NewComparer creates a Comparer with the given thresholds.
func NewComparer(cfg config.AnalysisConfig) *Comparer {
	return &Comparer{cfg: cfg}
}

// Compare builds a ComparisonRecord from the current record and the most
// recent prior one. A nil previous is the normal first-run state: the result
// carries the current record with every change field nil.
func (c *Comparer) Compare(current, previous *model.AnalysisRecord) model.ComparisonRecord {
	result := model.ComparisonRecord{Current: current, Previous: previous}

	if previous == nil {
		result.Changes.Summary = "No previous data available for comparison"
		return result
	}

	result.HasPrevious = true
	days := calendarDays(previous.Timestamp, current.Timestamp)
	result.DaysSincePrevious = &days

	changes := model.ChangeSet{
		SpotVIX: c.numericChange(current.SpotVIX, previous.SpotVIX),
		CurveShape: &model.CategoricalChange{
			Changed: current.CurveShape != previous.CurveShape,
			From:    string(previous.CurveShape),
			To:      string(current.CurveShape),
		},
		TradingSignal: &model.CategoricalChange{
			Changed: current.TradingSignal != previous.TradingSignal,
			From:    string(previous.TradingSignal),
			To:      string(current.TradingSignal),
		},
		Contracts: c.contractChanges(current, previous),
	}

	if current.RollCarry != nil && previous.RollCarry != nil {
		changes.RollCarryPct = c.numericChange(current.RollCarry.RollPct, previous.RollCarry.RollPct)
	}

	changes.Summary = summarize(current, changes, days)
	result.Changes = changes
	return result
}

// calendarDays returns the raw day gap between two timestamps. Weekends and
// holidays are not collapsed; a Friday-to-Monday comparison reports 3.
func calendarDays(previous, current time.Time) int {
	p := time.Date(previous.Year(), previous.Month(), previous.Day(), 0, 0, 0, 0, time.UTC)
	q := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, time.UTC)
	return int(q.Sub(p).Hours() / 24)
}

func (c *Comparer) numericChange(current, previous float64) *model.NumericChange {
	change := &model.NumericChange{
		Absolute: current - previous,
		From:     previous,
		To:       current,
	}

	if previous != 0 {
		pct := change.Absolute / previous * 100
		change.Percentage = &pct
	}

	switch {
	case change.Absolute > c.cfg.ChangeEpsilon:
		change.Direction = model.DirectionUp
	case change.Absolute < -c.cfg.ChangeEpsilon:
		change.Direction = model.DirectionDown
	default:
		change.Direction = model.DirectionUnchanged
	}
	return change
}

// contractChanges matches contracts by symbol. Rolled-off and newly-listed
// symbols are omitted rather than reported.
func (c *Comparer) contractChanges(current, previous *model.AnalysisRecord) []model.ContractChange {
	prior := make(map[string]float64, len(previous.Contracts))
	for _, contract := range previous.Contracts {
		prior[contract.Symbol] = contract.Price
	}

	var changes []model.ContractChange
	for _, contract := range current.Contracts {
		previousPrice, ok := prior[contract.Symbol]
		if !ok {
			continue
		}
		changes = append(changes, model.ContractChange{
			Symbol:        contract.Symbol,
			CurrentPrice:  contract.Price,
			PreviousPrice: previousPrice,
			NumericChange: *c.numericChange(contract.Price, previousPrice),
		})
	}
	return changes
}

// summarize renders the one-line natural-language description of the session.
func summarize(current *model.AnalysisRecord, changes model.ChangeSet, days int) string {
	daysDesc := "1 day"
	if days != 1 {
		daysDesc = fmt.Sprintf("%d days", days)
	}

	var b strings.Builder
	vix := changes.SpotVIX
	if vix.Direction == model.DirectionUnchanged {
		fmt.Fprintf(&b, "VIX unchanged at %.2f from %s ago", current.SpotVIX, daysDesc)
	} else {
		pct := 0.0
		if vix.Percentage != nil {
			pct = *vix.Percentage
		}
		fmt.Fprintf(&b, "VIX %s %.2f points (%+.1f%%) from %s ago",
			vix.Direction, math.Abs(vix.Absolute), pct, daysDesc)
	}

	if changes.CurveShape.Changed {
		fmt.Fprintf(&b, ". Curve changed from %s to %s", changes.CurveShape.From, changes.CurveShape.To)
	} else {
		fmt.Fprintf(&b, ". Curve remains in %s", strings.ToLower(string(current.CurveShape)))
	}
	return b.String()
}
