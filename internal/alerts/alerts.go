package alerts

import (
	"fmt"
	"log/slog"
	"math"

	"vixmon/internal/config"
	"vixmon/internal/model"
)

// Alert is one triggered threshold condition.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
)

// Checker evaluates a finished analysis record against alert thresholds.
// Delivery is out of scope; triggered alerts are logged and returned.
type Checker struct {
	logger *slog.Logger
	cfg    config.AlertConfig
}

// NewChecker creates a Checker with the given thresholds.
func NewChecker(logger *slog.Logger, cfg config.AlertConfig) *Checker {
	return &Checker{logger: logger, cfg: cfg}
}

// Check runs every threshold rule over the record.
func (c *Checker) Check(record model.AnalysisRecord) []Alert {
	var alerts []Alert

	if c.cfg.InversionAlert && len(record.Inversions) > 0 {
		alerts = append(alerts, Alert{
			Type:     "INVERSION",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Term structure inversion detected: %d inversions", len(record.Inversions)),
		})
	}

	if record.SpotToFront != nil {
		if *record.SpotToFront > c.cfg.ExtremeContango {
			alerts = append(alerts, Alert{
				Type:     "EXTREME_CONTANGO",
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Extreme contango: spot to front %.2f points", *record.SpotToFront),
			})
		} else if *record.SpotToFront < c.cfg.ExtremeBackwardation {
			alerts = append(alerts, Alert{
				Type:     "EXTREME_BACKWARDATION",
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Extreme backwardation: spot to front %.2f points", *record.SpotToFront),
			})
		}
	}

	if record.RollCarry != nil && math.Abs(record.RollCarry.RollPct) > c.cfg.HighRollCarryPct {
		alerts = append(alerts, Alert{
			Type:     "HIGH_ROLL_CARRY",
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("High roll carry: %.2f%%", record.RollCarry.RollPct),
		})
	}

	if record.SpotVIX > c.cfg.VIXSpikeLevel {
		alerts = append(alerts, Alert{
			Type:     "VIX_SPIKE",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("VIX spike: spot at %.2f", record.SpotVIX),
		})
	}

	for _, alert := range alerts {
		c.logger.Warn("Alert triggered", "type", alert.Type, "severity", alert.Severity, "message", alert.Message)
	}
	return alerts
}
