package report

import (
	"fmt"
	"strings"

	"vixmon/internal/model"
)

// Render builds the plain-text session report from a comparison record.
// Pure string assembly; safe to call any number of times.
func Render(comparison model.ComparisonRecord) string {
	current := comparison.Current
	var b strings.Builder

	fmt.Fprintf(&b, "VIX Term Structure Summary - %s\n", current.Timestamp.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("MARKET OVERVIEW\n")
	fmt.Fprintf(&b, "VIX Spot: %.2f", current.SpotVIX)
	if comparison.HasPrevious && comparison.Changes.SpotVIX != nil {
		change := comparison.Changes.SpotVIX
		if change.Direction != model.DirectionUnchanged {
			fmt.Fprintf(&b, " %s %+.2f", arrow(change.Direction), change.Absolute)
			if change.Percentage != nil {
				fmt.Fprintf(&b, " (%+.1f%%)", *change.Percentage)
			}
		}
	}
	b.WriteString("\n")
	if comparison.Previous != nil {
		fmt.Fprintf(&b, "Previous VIX: %.2f on %s\n", comparison.Previous.SpotVIX, comparison.Previous.DateOnly)
	}
	fmt.Fprintf(&b, "Number of Contracts: %d\n", len(current.Contracts))
	fmt.Fprintf(&b, "Curve Shape: %s\n", current.CurveShape)
	fmt.Fprintf(&b, "Trading Signal: %s\n", current.TradingSignal)
	if comparison.Degraded {
		b.WriteString("NOTE: store unavailable, historical context degraded\n")
	}

	b.WriteString("\nHISTORICAL CONTEXT\n")
	b.WriteString(comparison.Changes.Summary + "\n")

	b.WriteString("\nPOINTS ANALYSIS\n")
	writeSpread(&b, "Spot to Front Month", current.SpotToFront)
	writeSpread(&b, "Front to Second Month", current.FrontToSecond)
	if current.SpotToFront != nil {
		switch {
		case *current.SpotToFront > 0:
			fmt.Fprintf(&b, "Status: CONTANGO (+%.2f pts)\n", *current.SpotToFront)
		case *current.SpotToFront < 0:
			fmt.Fprintf(&b, "Status: BACKWARDATION (%.2f pts)\n", *current.SpotToFront)
		default:
			b.WriteString("Status: FLAT\n")
		}
	}

	b.WriteString("\nROLL CARRY ANALYSIS\n")
	if rc := current.RollCarry; rc != nil {
		fmt.Fprintf(&b, "Synthetic 30-Day Index: %.2f\n", rc.SyntheticIndex)
		fmt.Fprintf(&b, "Roll Points: %.4f\n", rc.RollPoints)
		fmt.Fprintf(&b, "Roll Carry: %.2f%% (%s)\n", rc.RollPct, rc.ContractsUsed)
	} else if current.DegenerateCurve {
		b.WriteString("Not available: front and second contracts share expiration\n")
	} else {
		b.WriteString("Not available: fewer than two contracts\n")
	}

	if len(comparison.Changes.Contracts) > 0 {
		b.WriteString("\nCONTRACT CHANGES\n")
		for _, change := range comparison.Changes.Contracts {
			pct := 0.0
			if change.Percentage != nil {
				pct = *change.Percentage
			}
			fmt.Fprintf(&b, "%-8s %7.2f %s %+6.2f (%+5.1f%%) from %.2f\n",
				change.Symbol, change.CurrentPrice, arrow(change.Direction),
				change.Absolute, pct, change.PreviousPrice)
		}
	}

	if len(current.Inversions) > 0 {
		fmt.Fprintf(&b, "\nINVERSIONS DETECTED (%d)\n", len(current.Inversions))
		for i, inv := range current.Inversions {
			fmt.Fprintf(&b, "%d. %s (%.2f) > %s (%.2f) by %.2f pts\n",
				i+1, inv.ContractA, inv.PriceA, inv.ContractB, inv.PriceB, inv.Magnitude)
		}
	} else {
		b.WriteString("\nINVERSIONS\nNone - Clean term structure\n")
	}

	b.WriteString("\nFUTURES CONTRACTS\n")
	for _, contract := range current.Contracts {
		fmt.Fprintf(&b, "%-8s %7.2f  (%3d days)\n", contract.Symbol, contract.Price, contract.DaysToExpiration)
	}

	b.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	return b.String()
}

func writeSpread(b *strings.Builder, label string, value *float64) {
	if value == nil {
		fmt.Fprintf(b, "%s: n/a\n", label)
		return
	}
	fmt.Fprintf(b, "%s: %.2f points\n", label, *value)
}

func arrow(direction string) string {
	switch direction {
	case model.DirectionUp:
		return "↑"
	case model.DirectionDown:
		return "↓"
	default:
		return "→"
	}
}
