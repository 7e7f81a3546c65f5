package qty

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseExact(t *testing.T) {
	q := Parse("100")
	if q.Kind != Exact {
		t.Fatalf("expected Exact, got %v", q.Kind)
	}
	if !q.Value.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", q.Value)
	}
	if q.ResolveInt() != 100 {
		t.Fatalf("expected resolve 100, got %d", q.ResolveInt())
	}
}

func TestParseDecimalValue(t *testing.T) {
	q := Parse(" 12.5 ")
	if q.Kind != Exact {
		t.Fatalf("expected Exact, got %v", q.Kind)
	}
	if !q.Resolve().Equal(decimal.NewFromFloat(12.5)) {
		t.Fatalf("expected 12.5, got %s", q.Resolve())
	}
}

func TestParseRange(t *testing.T) {
	for _, raw := range []string{"50-100", "50 - 100", " 50-100 "} {
		q := Parse(raw)
		if q.Kind != Range {
			t.Fatalf("%q: expected Range, got %v", raw, q.Kind)
		}
		if !q.Min.Equal(decimal.NewFromInt(50)) || !q.Max.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("%q: expected [50,100], got [%s,%s]", raw, q.Min, q.Max)
		}
		// Totals use the conservative lower bound.
		if q.ResolveInt() != 50 {
			t.Fatalf("%q: expected resolve 50, got %d", raw, q.ResolveInt())
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, raw := range []string{"", "tùy chọn", "100-", "-50", "abc-def", "100--200"} {
		q := Parse(raw)
		if q.Kind != Unknown {
			t.Fatalf("%q: expected Unknown, got %v", raw, q.Kind)
		}
		if !q.Resolve().IsZero() {
			t.Fatalf("%q: expected zero resolve, got %s", raw, q.Resolve())
		}
	}
}

func TestParseInvertedRangeIsUnknown(t *testing.T) {
	if q := Parse("100-50"); q.Kind != Unknown {
		t.Fatalf("expected inverted range to be Unknown, got %v", q.Kind)
	}
}
