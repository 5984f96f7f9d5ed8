package model

import "time"

// CurveShape classifies the overall shape of the futures term structure.
type CurveShape string

const (
	ShapeInverted      CurveShape = "Inverted"
	ShapeSteepContango CurveShape = "SteepContango"
	ShapeContango      CurveShape = "Contango"
	ShapeBackwardation CurveShape = "Backwardation"
	ShapeMixed         CurveShape = "Mixed"
	ShapeUnknown       CurveShape = "Unknown"
)

// TradingSignal is the deterministic signal derived from curve shape and roll carry.
type TradingSignal string

const (
	SignalStrongContango      TradingSignal = "StrongContango"
	SignalContango            TradingSignal = "Contango"
	SignalNeutral             TradingSignal = "Neutral"
	SignalBackwardation       TradingSignal = "Backwardation"
	SignalStrongBackwardation TradingSignal = "StrongBackwardation"
	SignalMixed               TradingSignal = "Mixed"
)

// ContractQuote represents a single futures contract observation.
type ContractQuote struct {
	Symbol           string    `json:"symbol" db:"symbol"`
	Price            float64   `json:"price" db:"price"`
	DaysToExpiration int       `json:"days_to_expiration" db:"days_to_expiration"`
	ExpirationDate   time.Time `json:"expiration_date" db:"expiration_date"`
}

// QuoteSnapshot is one raw observation delivered by a price feed: a spot
// level plus the futures quotes seen at the same moment.
type QuoteSnapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	SpotVIX   float64         `json:"spot_vix"`
	Quotes    []ContractQuote `json:"quotes"`
}

// RollCarry holds the 30-day constant-maturity roll estimate.
type RollCarry struct {
	RollPoints     float64 `json:"roll_points" db:"roll_points"`
	SyntheticIndex float64 `json:"synthetic_index" db:"synthetic_index"`
	RollPct        float64 `json:"roll_pct" db:"roll_pct"`
	ContractsUsed  string  `json:"contracts_used" db:"contracts_used"`
}

// Inversion records a pricing anomaly where a later-expiring contract (or the
// front month versus spot) trades below an earlier one.
type Inversion struct {
	Type      string  `json:"type" db:"inversion_type"`
	ContractA string  `json:"contract_a" db:"contract_a"`
	ContractB string  `json:"contract_b" db:"contract_b"`
	PriceA    float64 `json:"price_a" db:"price_a"`
	PriceB    float64 `json:"price_b" db:"price_b"`
	Magnitude float64 `json:"magnitude" db:"magnitude"`
}

const (
	InversionFutures = "futures_inversion"
	InversionSpot    = "spot_inversion"
)

// AnalysisRecord is one full daily snapshot of the term structure analysis.
// It is immutable once created; only the snapshot store extends its lifetime.
// Optional metrics are pointers: nil means the input did not allow the
// computation (fewer than two contracts, degenerate expirations), which is a
// valid state rather than an error.
type AnalysisRecord struct {
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
	DateOnly        string          `json:"date_only" db:"date_only"`
	SpotVIX         float64         `json:"spot_vix" db:"spot_vix"`
	Contracts       []ContractQuote `json:"contracts"`
	SpotToFront     *float64        `json:"spot_to_front" db:"spot_to_front"`
	FrontToSecond   *float64        `json:"front_to_second" db:"front_to_second"`
	RollCarry       *RollCarry      `json:"roll_carry"`
	Inversions      []Inversion     `json:"inversions"`
	CurveShape      CurveShape      `json:"curve_shape" db:"curve_shape"`
	TradingSignal   TradingSignal   `json:"trading_signal" db:"trading_signal"`
	DegenerateCurve bool            `json:"degenerate_curve" db:"degenerate_curve"`
}

// NumericChange describes the movement of one scalar metric between sessions.
// Percentage is nil when the previous value was zero.
type NumericChange struct {
	Absolute   float64  `json:"absolute"`
	Percentage *float64 `json:"percentage"`
	Direction  string   `json:"direction"`
	From       float64  `json:"from"`
	To         float64  `json:"to"`
}

const (
	DirectionUp        = "up"
	DirectionDown      = "down"
	DirectionUnchanged = "unchanged"
)

// CategoricalChange describes a from/to transition of an enumerated field.
type CategoricalChange struct {
	Changed bool   `json:"changed"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ContractChange is the per-contract price movement for a symbol present in
// both the current and the previous record.
type ContractChange struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousPrice float64 `json:"previous_price"`
	NumericChange
}

// ChangeSet aggregates every computed delta between two records.
type ChangeSet struct {
	SpotVIX       *NumericChange     `json:"spot_vix"`
	RollCarryPct  *NumericChange     `json:"roll_carry_pct"`
	CurveShape    *CategoricalChange `json:"curve_shape"`
	TradingSignal *CategoricalChange `json:"trading_signal"`
	Contracts     []ContractChange   `json:"contracts"`
	Summary       string             `json:"summary"`
}

// ComparisonRecord is the engine's final output: the current analysis, the
// most recent prior one (when any exists) and the deltas between them. It is
// derived, never persisted, and borrows its record references read-only.
type ComparisonRecord struct {
	Current           *AnalysisRecord `json:"current"`
	Previous          *AnalysisRecord `json:"previous"`
	Changes           ChangeSet       `json:"changes"`
	DaysSincePrevious *int            `json:"days_since_previous"`
	HasPrevious       bool            `json:"has_previous_data"`
	Degraded          bool            `json:"degraded"`
}

// DateOnly is the canonical YYYY-MM-DD form used for daily lookups.
func DateOnly(ts time.Time) string {
	return ts.Format("2006-01-02")
}
