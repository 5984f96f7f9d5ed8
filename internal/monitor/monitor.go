package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vixmon/internal/alerts"
	"vixmon/internal/analysis"
	"vixmon/internal/config"
	"vixmon/internal/curve"
	"vixmon/internal/database"
	"vixmon/internal/history"
	"vixmon/internal/model"
)

// Monitor runs one analysis session: normalize the snapshot, compute metrics,
// persist, resolve the previous trading day and compare.
type Monitor struct {
	logger     *slog.Logger
	repo       database.Repository
	calculator *analysis.Calculator
	comparer   *history.Comparer
	checker    *alerts.Checker
}

// New creates a Monitor wired to the given store and configuration.
func New(logger *slog.Logger, repo database.Repository, cfg *config.Config) *Monitor {
	return &Monitor{
		logger:     logger,
		repo:       repo,
		calculator: analysis.NewCalculator(cfg.Analysis),
		comparer:   history.NewComparer(cfg.Analysis),
		checker:    alerts.NewChecker(logger, cfg.Alerts),
	}
}

// RunOnce processes one quote snapshot end to end and returns the comparison
// record. Malformed input fails the run; an unreachable store degrades it:
// the current record is still returned with no historical context and the
// Degraded flag set. A duplicate timestamp is surfaced as an error because it
// indicates a scheduling or clock bug upstream.
func (m *Monitor) RunOnce(ctx context.Context, snapshot model.QuoteSnapshot) (model.ComparisonRecord, error) {
	cv, err := curve.New(snapshot.SpotVIX, snapshot.Quotes)
	if err != nil {
		return model.ComparisonRecord{}, fmt.Errorf("build curve: %w", err)
	}

	record := m.calculator.Compute(cv, snapshot.Timestamp)
	m.logger.Info("Analysis computed",
		"timestamp", record.Timestamp,
		"spot", record.SpotVIX,
		"contracts", len(record.Contracts),
		"shape", record.CurveShape,
		"signal", record.TradingSignal,
	)

	degraded := false
	if err := m.repo.Store(ctx, record); err != nil {
		if errors.Is(err, database.ErrDuplicateTimestamp) {
			return model.ComparisonRecord{}, err
		}
		m.logger.Error("Store unavailable, continuing without persistence", "error", err)
		degraded = true
	}

	var previous *model.AnalysisRecord
	if !degraded {
		previous, err = m.repo.GetLatestBefore(ctx, record.Timestamp)
		if err != nil {
			m.logger.Error("Previous record lookup failed, continuing without history", "error", err)
			degraded = true
			previous = nil
		}
	}

	comparison := m.comparer.Compare(&record, previous)
	comparison.Degraded = degraded

	m.checker.Check(record)
	return comparison, nil
}
