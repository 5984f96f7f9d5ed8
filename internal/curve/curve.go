package curve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vixmon/internal/model"
)

// ErrInsufficientData is returned when an accessor needs more contracts than
// the curve holds.
var ErrInsufficientData = errors.New("insufficient contracts in curve")

// ValidationError reports a malformed quote rejected before any computation.
type ValidationError struct {
	Symbol string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quote %s: %s", e.Symbol, e.Reason)
}

// Curve is the normalized term structure: a spot level plus monthly futures
// contracts sorted ascending by days to expiration.
type Curve struct {
	spot      float64
	contracts []model.ContractQuote
}

// New validates the raw quotes, drops non-monthly contracts and orders the
// rest front month first. An empty result is valid; malformed input is not.
func New(spot float64, quotes []model.ContractQuote) (*Curve, error) {
	contracts := make([]model.ContractQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.Price <= 0 {
			return nil, &ValidationError{Symbol: q.Symbol, Reason: "non-positive price"}
		}
		if q.DaysToExpiration < 0 {
			return nil, &ValidationError{Symbol: q.Symbol, Reason: "negative days to expiration"}
		}
		if !IsMonthlyContract(q.Symbol) {
			continue
		}
		contracts = append(contracts, q)
	}

	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].DaysToExpiration < contracts[j].DaysToExpiration
	})

	return &Curve{spot: spot, contracts: contracts}, nil
}

// Spot returns the spot index level the curve was built against.
func (c *Curve) Spot() float64 {
	return c.spot
}

// Contracts returns the ordered contracts, front month first.
func (c *Curve) Contracts() []model.ContractQuote {
	return c.contracts
}

// Len returns the number of monthly contracts on the curve.
func (c *Curve) Len() int {
	return len(c.contracts)
}

// Front returns the nearest-expiring contract.
func (c *Curve) Front() (model.ContractQuote, error) {
	return c.at(0)
}

// Second returns the next-nearest contract after the front month.
func (c *Curve) Second() (model.ContractQuote, error) {
	return c.at(1)
}

func (c *Curve) at(i int) (model.ContractQuote, error) {
	if len(c.contracts) <= i {
		return model.ContractQuote{}, fmt.Errorf("need %d contracts, have %d: %w", i+1, len(c.contracts), ErrInsufficientData)
	}
	return c.contracts[i], nil
}

// Standard futures month codes: F=Jan .. Z=Dec.
const monthCodes = "FGHJKMNQUVXZ"

// IsMonthlyContract reports whether a symbol names a standard monthly VIX
// contract. CBOE uses VX/Q5 for monthlies and VX30/Q5 for weeklies; the
// traditional VXQ25 form is also accepted.
func IsMonthlyContract(symbol string) bool {
	if prefix, monthYear, ok := strings.Cut(symbol, "/"); ok {
		if prefix != "VX" {
			return false
		}
		return validMonthYear(monthYear)
	}

	// Traditional format: VX + month letter + year digits.
	if len(symbol) >= 4 && strings.HasPrefix(symbol, "VX") {
		return validMonthYear(symbol[2:])
	}
	return false
}

func validMonthYear(s string) bool {
	if len(s) < 2 {
		return false
	}
	if !strings.ContainsRune(monthCodes, rune(s[0])) {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
