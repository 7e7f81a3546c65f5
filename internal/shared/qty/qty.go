// Package qty models the free-form quantity strings carried on quote
// items. Customers quote ranges ("50-100") as often as exact counts, so
// the raw string is preserved on the record and parsed into a tagged
// value whenever arithmetic is needed.
package qty

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind discriminates the parsed forms of a quantity string.
type Kind int

const (
	// Unknown is anything that is not a number or a range. It resolves
	// to zero so a malformed line never inflates a quote total.
	Unknown Kind = iota
	Exact
	Range
)

// Quantity is the parsed form of a quote-item quantity string.
type Quantity struct {
	Kind Kind
	// Value holds the exact quantity when Kind == Exact.
	Value decimal.Decimal
	// Min and Max bound the quantity when Kind == Range.
	Min decimal.Decimal
	Max decimal.Decimal
}

// Parse interprets a free-form quantity string. Accepted forms are a
// plain number ("100", "12.5") and a dash range ("50-100", "50 - 100").
// Everything else yields Unknown.
func Parse(raw string) Quantity {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Quantity{Kind: Unknown}
	}

	if d, err := decimal.NewFromString(s); err == nil {
		if d.IsNegative() {
			return Quantity{Kind: Unknown}
		}
		return Quantity{Kind: Exact, Value: d}
	}

	// Range form: split on the first dash that is not a leading sign.
	if idx := strings.Index(s, "-"); idx > 0 {
		lo, loErr := decimal.NewFromString(strings.TrimSpace(s[:idx]))
		hi, hiErr := decimal.NewFromString(strings.TrimSpace(s[idx+1:]))
		if loErr == nil && hiErr == nil && lo.LessThanOrEqual(hi) {
			return Quantity{Kind: Range, Min: lo, Max: hi}
		}
	}

	return Quantity{Kind: Unknown}
}

// Resolve collapses the quantity to a single number for totals and
// material-need arithmetic: an exact value as-is, a range at its lower
// bound, and zero when unparseable.
func (q Quantity) Resolve() decimal.Decimal {
	switch q.Kind {
	case Exact:
		return q.Value
	case Range:
		return q.Min
	default:
		return decimal.Zero
	}
}

// ResolveInt truncates the resolved quantity to a whole unit count.
func (q Quantity) ResolveInt() int {
	return int(q.Resolve().IntPart())
}
