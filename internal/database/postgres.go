package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"vixmon/internal/model"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository wraps an existing pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{Pool: pool}
}

// Init creates the three-level schema: one analysis row per timestamp, child
// contract rows keyed by (timestamp, symbol) and child inversion rows keyed
// by timestamp.
func (r *PostgresRepository) Init(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS vix_analysis (
		timestamp TIMESTAMPTZ PRIMARY KEY,
		date_only DATE NOT NULL,
		spot_vix DOUBLE PRECISION NOT NULL,
		spot_to_front DOUBLE PRECISION,
		front_to_second DOUBLE PRECISION,
		roll_points DOUBLE PRECISION,
		synthetic_index DOUBLE PRECISION,
		roll_pct DOUBLE PRECISION,
		contracts_used TEXT,
		curve_shape TEXT NOT NULL,
		trading_signal TEXT NOT NULL,
		degenerate_curve BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS vix_contracts (
		timestamp TIMESTAMPTZ NOT NULL REFERENCES vix_analysis(timestamp),
		symbol TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		days_to_expiration INTEGER NOT NULL,
		expiration_date DATE,
		contract_order INTEGER NOT NULL,
		PRIMARY KEY (timestamp, symbol)
	);
	CREATE TABLE IF NOT EXISTS vix_inversions (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL REFERENCES vix_analysis(timestamp),
		inversion_type TEXT NOT NULL,
		contract_a TEXT NOT NULL,
		contract_b TEXT NOT NULL,
		price_a DOUBLE PRECISION NOT NULL,
		price_b DOUBLE PRECISION NOT NULL,
		magnitude DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_date ON vix_analysis(date_only);
	CREATE INDEX IF NOT EXISTS idx_contracts_ts ON vix_contracts(timestamp);
	CREATE INDEX IF NOT EXISTS idx_inversions_ts ON vix_inversions(timestamp);`

	if _, err := r.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Store persists one record atomically.
func (r *PostgresRepository) Store(ctx context.Context, record model.AnalysisRecord) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin store: %w: %w", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := insertRecord(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertRecord(ctx context.Context, tx pgx.Tx, record model.AnalysisRecord) error {
	var rollPoints, syntheticIndex, rollPct *float64
	var contractsUsed *string
	if rc := record.RollCarry; rc != nil {
		rollPoints, syntheticIndex, rollPct = &rc.RollPoints, &rc.SyntheticIndex, &rc.RollPct
		contractsUsed = &rc.ContractsUsed
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO vix_analysis
		(timestamp, date_only, spot_vix, spot_to_front, front_to_second,
		 roll_points, synthetic_index, roll_pct, contracts_used,
		 curve_shape, trading_signal, degenerate_curve)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.Timestamp, record.DateOnly, record.SpotVIX,
		record.SpotToFront, record.FrontToSecond,
		rollPoints, syntheticIndex, rollPct, contractsUsed,
		record.CurveShape, record.TradingSignal, record.DegenerateCurve,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", record.Timestamp.Format(time.RFC3339), ErrDuplicateTimestamp)
		}
		return fmt.Errorf("insert analysis: %w", err)
	}

	for order, contract := range record.Contracts {
		_, err := tx.Exec(ctx, `
			INSERT INTO vix_contracts
			(timestamp, symbol, price, days_to_expiration, expiration_date, contract_order)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			record.Timestamp, contract.Symbol, contract.Price,
			contract.DaysToExpiration, contract.ExpirationDate, order,
		)
		if err != nil {
			return fmt.Errorf("insert contract %s: %w", contract.Symbol, err)
		}
	}

	for _, inv := range record.Inversions {
		_, err := tx.Exec(ctx, `
			INSERT INTO vix_inversions
			(timestamp, inversion_type, contract_a, contract_b, price_a, price_b, magnitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			record.Timestamp, inv.Type, inv.ContractA, inv.ContractB,
			inv.PriceA, inv.PriceB, inv.Magnitude,
		)
		if err != nil {
			return fmt.Errorf("insert inversion: %w", err)
		}
	}
	return nil
}

// GetLatestBefore returns the newest record strictly earlier than ts.
func (r *PostgresRepository) GetLatestBefore(ctx context.Context, ts time.Time) (*model.AnalysisRecord, error) {
	row := r.Pool.QueryRow(ctx, selectAnalysis+`
		WHERE timestamp < $1
		ORDER BY timestamp DESC
		LIMIT 1`, ts)

	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest before: %w: %w", ErrStoreUnavailable, err)
	}

	if err := r.hydrate(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetRange returns records with date_only in [start, end], oldest first.
func (r *PostgresRepository) GetRange(ctx context.Context, start, end string) ([]model.AnalysisRecord, error) {
	rows, err := r.Pool.Query(ctx, selectAnalysis+`
		WHERE date_only BETWEEN $1 AND $2
		ORDER BY timestamp ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("select range: %w", err)
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan range row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate range: %w", err)
	}

	for i := range records {
		if err := r.hydrate(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Migrate imports external records one transaction each, so a single bad
// record cannot roll back the batch. Duplicates by timestamp are skipped.
func (r *PostgresRepository) Migrate(ctx context.Context, records []model.AnalysisRecord) (MigrationResult, error) {
	var result MigrationResult
	for _, record := range records {
		if record.Timestamp.IsZero() || record.CurveShape == "" {
			result.Rejected++
			continue
		}

		err := r.Store(ctx, record)
		switch {
		case errors.Is(err, ErrDuplicateTimestamp):
			result.Skipped++
		case err != nil:
			return result, fmt.Errorf("migrate %s: %w", record.Timestamp.Format(time.RFC3339), err)
		default:
			result.Imported++
		}
	}
	return result, nil
}

const selectAnalysis = `
	SELECT timestamp, date_only, spot_vix, spot_to_front, front_to_second,
	       roll_points, synthetic_index, roll_pct, contracts_used,
	       curve_shape, trading_signal, degenerate_curve
	FROM vix_analysis`

func scanRecord(row pgx.Row) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	var dateOnly time.Time
	var rollPoints, syntheticIndex, rollPct *float64
	var contractsUsed *string

	err := row.Scan(
		&record.Timestamp, &dateOnly, &record.SpotVIX,
		&record.SpotToFront, &record.FrontToSecond,
		&rollPoints, &syntheticIndex, &rollPct, &contractsUsed,
		&record.CurveShape, &record.TradingSignal, &record.DegenerateCurve,
	)
	if err != nil {
		return nil, err
	}

	record.DateOnly = model.DateOnly(dateOnly)
	if rollPoints != nil && syntheticIndex != nil && rollPct != nil {
		record.RollCarry = &model.RollCarry{
			RollPoints:     *rollPoints,
			SyntheticIndex: *syntheticIndex,
			RollPct:        *rollPct,
		}
		if contractsUsed != nil {
			record.RollCarry.ContractsUsed = *contractsUsed
		}
	}
	return &record, nil
}

// hydrate loads the child contract and inversion rows for a parent record.
func (r *PostgresRepository) hydrate(ctx context.Context, record *model.AnalysisRecord) error {
	rows, err := r.Pool.Query(ctx, `
		SELECT symbol, price, days_to_expiration, expiration_date
		FROM vix_contracts
		WHERE timestamp = $1
		ORDER BY contract_order`, record.Timestamp)
	if err != nil {
		return fmt.Errorf("select contracts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contract model.ContractQuote
		if err := rows.Scan(&contract.Symbol, &contract.Price, &contract.DaysToExpiration, &contract.ExpirationDate); err != nil {
			return fmt.Errorf("scan contract: %w", err)
		}
		record.Contracts = append(record.Contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate contracts: %w", err)
	}

	invRows, err := r.Pool.Query(ctx, `
		SELECT inversion_type, contract_a, contract_b, price_a, price_b, magnitude
		FROM vix_inversions
		WHERE timestamp = $1
		ORDER BY id`, record.Timestamp)
	if err != nil {
		return fmt.Errorf("select inversions: %w", err)
	}
	defer invRows.Close()

	for invRows.Next() {
		var inv model.Inversion
		if err := invRows.Scan(&inv.Type, &inv.ContractA, &inv.ContractB, &inv.PriceA, &inv.PriceB, &inv.Magnitude); err != nil {
			return fmt.Errorf("scan inversion: %w", err)
		}
		record.Inversions = append(record.Inversions, inv)
	}
	return invRows.Err()
}
