package dataset

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestMidPriceEmptyBook(t *testing.T) {
	var row MarketRow
	if !row.MidPrice().IsZero() {
		t.Fatalf("expected zero mid price, got %s", row.MidPrice())
	}
}

func TestWireColumnCount(t *testing.T) {
	if got := WireColumnCount(10); got != 42 {
		t.Fatalf("WireColumnCount(10) = %d, want 42", got)
	}
}
