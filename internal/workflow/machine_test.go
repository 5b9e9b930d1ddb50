package workflow

import "testing"

func TestManufacturingOrderTransitions(t *testing.T) {
	m := MachineFor(DocManufacturingOrder)

	cases := []struct {
		from, to string
		want     bool
	}{
		{MOStatusDraft, MOStatusConfirmed, true},
		{MOStatusConfirmed, MOStatusInProgress, true},
		{MOStatusInProgress, MOStatusDone, true},
		{MOStatusInProgress, MOStatusPaused, true},
		{MOStatusPaused, MOStatusInProgress, true},
		{MOStatusPaused, MOStatusCancelled, true},
		{MOStatusDraft, MOStatusCancelled, true},
		{MOStatusDraft, MOStatusInProgress, false},
		{MOStatusDone, MOStatusCancelled, false},
		{MOStatusCancelled, MOStatusDraft, false},
	}
	for _, tc := range cases {
		if got := m.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("MO %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}

	if !m.IsTerminal(MOStatusDone) || !m.IsTerminal(MOStatusCancelled) {
		t.Error("Expected DONE and CANCELLED to be terminal")
	}
	if m.IsTerminal(MOStatusPaused) {
		t.Error("Expected PAUSED not terminal")
	}
}

func TestPurchaseOrderTransitions(t *testing.T) {
	m := MachineFor(DocPurchaseOrder)

	cases := []struct {
		from, to string
		want     bool
	}{
		{POStatusDraft, POStatusPending, true},
		{POStatusDraft, POStatusCancelled, true},
		{POStatusPending, POStatusApproved, true},
		{POStatusPending, POStatusRejected, true},
		{POStatusPending, POStatusCancelled, false},
		{POStatusApproved, POStatusDraft, false},
		{POStatusRejected, POStatusPending, false},
		{POStatusDraft, POStatusApproved, false},
	}
	for _, tc := range cases {
		if got := m.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("PO %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}

	for _, status := range []string{POStatusApproved, POStatusRejected, POStatusCancelled} {
		if !m.IsTerminal(status) {
			t.Errorf("Expected %s to be terminal", status)
		}
	}
}

func TestPurchaseInvoiceTransitions(t *testing.T) {
	m := MachineFor(DocPurchaseInvoice)

	cases := []struct {
		from, to string
		want     bool
	}{
		{InvStatusDraft, InvStatusPosted, true},
		{InvStatusDraft, InvStatusCancelled, true},
		{InvStatusPosted, InvStatusPaid, true},
		{InvStatusPosted, InvStatusCancelled, false},
		{InvStatusPaid, InvStatusPosted, false},
		{InvStatusCancelled, InvStatusDraft, false},
	}
	for _, tc := range cases {
		if got := m.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("Invoice %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	m := MachineFor(DocPurchaseOrder)

	allowed := m.AllowedTransitions(POStatusDraft)
	if len(allowed) != 2 {
		t.Fatalf("Expected 2 allowed transitions from DRAFT, got %v", allowed)
	}

	if got := m.AllowedTransitions("UNKNOWN"); len(got) != 0 {
		t.Errorf("Expected no transitions for unknown status, got %v", got)
	}

	// 返回的切片是副本，修改不影响状态机
	allowed[0] = "MUTATED"
	if m.AllowedTransitions(POStatusDraft)[0] == "MUTATED" {
		t.Error("Expected AllowedTransitions to return a copy")
	}
}

func TestKnownStatus(t *testing.T) {
	m := MachineFor(DocPurchaseInvoice)
	if !m.KnownStatus(InvStatusPosted) {
		t.Error("Expected POSTED to be known")
	}
	if m.KnownStatus("RELEASED") {
		t.Error("Expected RELEASED to be unknown for invoices")
	}
}
