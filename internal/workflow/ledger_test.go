package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func floatPtr(f float64) *float64 { return &f }

func TestLedgerTotals(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 5, RemainingQty: floatPtr(10), UnitPrice: 12000000, TaxRate: 10},
		{ID: "l2", Quantity: 10, RemainingQty: floatPtr(20), UnitPrice: 4500000, TaxRate: 10},
	}, false)

	totals := ledger.Totals()

	if !totals.Subtotal.Equal(decimal.NewFromInt(105000000)) {
		t.Errorf("Expected subtotal 105000000, got %s", totals.Subtotal)
	}
	if !totals.Tax.Equal(decimal.NewFromInt(10500000)) {
		t.Errorf("Expected tax 10500000, got %s", totals.Tax)
	}
	if !totals.Total.Equal(decimal.NewFromInt(115500000)) {
		t.Errorf("Expected total 115500000, got %s", totals.Total)
	}
}

func TestLedgerTotalsIdentity(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 3.5, UnitPrice: 19.99, TaxRate: 13},
		{ID: "l2", Quantity: 7, UnitPrice: 0.07, TaxRate: 6},
		{ID: "l3", Quantity: 123, UnitPrice: 45.678, TaxRate: 0},
	}, false)

	totals := ledger.Totals()
	if !totals.Total.Equal(totals.Subtotal.Add(totals.Tax)) {
		t.Errorf("Expected total == subtotal + tax, got %s != %s + %s",
			totals.Total, totals.Subtotal, totals.Tax)
	}
}

func TestLedgerTotalsIdempotent(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 2.25, UnitPrice: 33.33, TaxRate: 9},
	}, false)

	first := ledger.Totals()
	second := ledger.Totals()

	if !first.Subtotal.Equal(second.Subtotal) || !first.Tax.Equal(second.Tax) || !first.Total.Equal(second.Total) {
		t.Errorf("Expected identical totals on repeated computation, got %+v then %+v", first, second)
	}
}

func TestLedgerTotalsEmpty(t *testing.T) {
	ledger := NewLedger(nil, false)
	totals := ledger.Totals()
	if !totals.Total.IsZero() {
		t.Errorf("Expected zero total for empty ledger, got %s", totals.Total)
	}
}

func TestLedgerValidateQuantityExceedsRemaining(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 6, RemainingQty: floatPtr(5), UnitPrice: 100, TaxRate: 10},
		{ID: "l2", Quantity: 3, RemainingQty: floatPtr(5), UnitPrice: 100, TaxRate: 10},
	}, false)

	violations := ledger.Validate()
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d: %+v", len(violations), violations)
	}
	if violations[0].LineID != "l1" {
		t.Errorf("Expected violation on line l1, got %s", violations[0].LineID)
	}
	if violations[0].Field != "quantity" {
		t.Errorf("Expected field quantity, got %s", violations[0].Field)
	}
}

func TestLedgerValidatePassesWithoutBoundLines(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 100, UnitPrice: 5, TaxRate: 0},
	}, false)

	if violations := ledger.Validate(); len(violations) != 0 {
		t.Errorf("Expected no violations, got %+v", violations)
	}
}

func TestLedgerValidateIntegralQuantity(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 2.5, UnitPrice: 10, TaxRate: 0},
	}, true)

	violations := ledger.Validate()
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation for fractional quantity, got %d", len(violations))
	}

	fractional := NewLedger([]Line{
		{ID: "l1", Quantity: 2.5, UnitPrice: 10, TaxRate: 0},
	}, false)
	if violations := fractional.Validate(); len(violations) != 0 {
		t.Errorf("Expected fractional quantity allowed, got %+v", violations)
	}
}

func TestLedgerValidateNegativePriceAndZeroQuantity(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 0, UnitPrice: 10, TaxRate: 0},
		{ID: "l2", Quantity: 1, UnitPrice: -5, TaxRate: 0},
	}, false)

	violations := ledger.Validate()
	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d: %+v", len(violations), violations)
	}
}

func TestLedgerAddLineDefaults(t *testing.T) {
	ledger := NewLedger(nil, false)
	line := ledger.AddLine(Line{ID: "new"})

	if line.Quantity != 1 {
		t.Errorf("Expected default quantity 1, got %f", line.Quantity)
	}
	if ledger.Len() != 1 {
		t.Errorf("Expected 1 line, got %d", ledger.Len())
	}
}

func TestLedgerRemoveLine(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1"},
		{ID: "l2", Locked: true},
	}, false)

	if err := ledger.RemoveLine("l1"); err != nil {
		t.Fatalf("Expected remove to succeed: %v", err)
	}
	if err := ledger.RemoveLine("missing"); err != ErrLineNotFound {
		t.Errorf("Expected ErrLineNotFound, got %v", err)
	}
	if err := ledger.RemoveLine("l2"); err != ErrLineLocked {
		t.Errorf("Expected ErrLineLocked for sourced line, got %v", err)
	}
	if ledger.Len() != 1 {
		t.Errorf("Expected 1 line remaining, got %d", ledger.Len())
	}
}

func TestLedgerUpdateLine(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 1, UnitPrice: 10, TaxRate: 5},
	}, false)

	if err := ledger.UpdateLine("l1", LinePatch{Quantity: floatPtr(4)}); err != nil {
		t.Fatalf("Expected update to succeed: %v", err)
	}
	line := ledger.Lines()[0]
	if line.Quantity != 4 {
		t.Errorf("Expected quantity 4, got %f", line.Quantity)
	}
	if line.UnitPrice != 10 || line.TaxRate != 5 {
		t.Errorf("Expected untouched fields preserved, got %+v", line)
	}

	if err := ledger.UpdateLine("missing", LinePatch{}); err != ErrLineNotFound {
		t.Errorf("Expected ErrLineNotFound, got %v", err)
	}
}

func TestLedgerPriceDrift(t *testing.T) {
	ledger := NewLedger([]Line{
		{ID: "l1", Quantity: 1, UnitPrice: 95, OriginalPrice: floatPtr(100)},
		{ID: "l2", Quantity: 1, UnitPrice: 100, OriginalPrice: floatPtr(100)},
		{ID: "l3", Quantity: 1, UnitPrice: 50},
	}, false)

	warnings := ledger.PriceDrift()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 drift warning, got %d", len(warnings))
	}
	if warnings[0].LineID != "l1" {
		t.Errorf("Expected warning on l1, got %s", warnings[0].LineID)
	}
}
