package service

import (
	"testing"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/testutil"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, nil, nil, ""), db
}

func seedPO(t *testing.T, svc *Services, db *gorm.DB, qty float64, price float64) *entity.PurchaseOrder {
	t.Helper()
	supplier := testutil.SeedSupplier(t, db, "深圳华强电子")
	material := testutil.SeedMaterial(t, db, "MAT-"+uuid.New().String()[:8], "STM32F103 芯片", 12.5)

	po, err := svc.Purchase.Create(CreatePORequest{
		SupplierID: supplier.ID,
		Items: []POItemInput{
			{MaterialID: material.ID, Quantity: qty, UnitPrice: price, TaxRate: 10},
		},
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create PO failed: %v", err)
	}
	return po
}

func TestPurchaseOrderSubmitApprove(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 5, 12000000)

	if po.Status != workflow.POStatusDraft {
		t.Fatalf("expected DRAFT, got %s", po.Status)
	}

	po, outcome, err := svc.Purchase.Submit(po.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected submit to pass, got violations: %v", outcome.Violations)
	}
	if po.Status != workflow.POStatusPending {
		t.Errorf("expected PENDING_APPROVAL, got %s", po.Status)
	}
	if po.SubmittedAt == nil {
		t.Error("expected SubmittedAt to be set")
	}

	po, outcome, err = svc.Purchase.Approve(po.ID, "approver-001")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected approve to pass, got violations: %v", outcome.Violations)
	}
	if po.Status != workflow.POStatusApproved {
		t.Errorf("expected APPROVED, got %s", po.Status)
	}
	if po.ApprovedBy != "approver-001" {
		t.Errorf("expected approver-001, got %s", po.ApprovedBy)
	}

	logs, err := svc.Purchase.History(po.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("expected 2 status log entries, got %d", len(logs))
	}
}

func TestPurchaseOrderSubmitWithoutLines(t *testing.T) {
	svc, db := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "空单供应商")

	po, err := svc.Purchase.Create(CreatePORequest{SupplierID: supplier.ID}, "test-user-001")
	if err != nil {
		t.Fatalf("Create PO failed: %v", err)
	}

	_, outcome, err := svc.Purchase.Submit(po.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected submit without lines to be blocked")
	}

	// 单据不变
	reloaded, _ := svc.Purchase.GetByID(po.ID)
	if reloaded.Status != workflow.POStatusDraft {
		t.Errorf("expected status to remain DRAFT, got %s", reloaded.Status)
	}
}

func TestPurchaseOrderSubmitFractionalQuantity(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 2.5, 100)

	_, outcome, err := svc.Purchase.Submit(po.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected fractional quantity to be blocked")
	}
	if len(outcome.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(outcome.Violations))
	}
	if outcome.Violations[0].Field != "quantity" {
		t.Errorf("expected violation on quantity, got %s", outcome.Violations[0].Field)
	}
}

func TestPurchaseOrderRejectRequiresReason(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 5, 100)

	if _, outcome, _ := svc.Purchase.Submit(po.ID, "test-user-001"); !outcome.OK {
		t.Fatalf("submit blocked: %v", outcome.Violations)
	}

	_, outcome, err := svc.Purchase.Reject(po.ID, "approver-001", "")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected reject without reason to be blocked")
	}

	reloaded, _ := svc.Purchase.GetByID(po.ID)
	if reloaded.Status != workflow.POStatusPending {
		t.Errorf("expected status to remain PENDING_APPROVAL, got %s", reloaded.Status)
	}

	rejected, outcome, err := svc.Purchase.Reject(po.ID, "approver-001", "价格超预算")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected reject with reason to pass: %v", outcome.Violations)
	}
	if rejected.Status != workflow.POStatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectReason != "价格超预算" {
		t.Errorf("unexpected reject reason %q", rejected.RejectReason)
	}

	// 驳回为终态
	if _, outcome, _ := svc.Purchase.Submit(po.ID, "test-user-001"); outcome.OK {
		t.Error("expected submit from REJECTED to be blocked")
	}
}

func TestPurchaseOrderCancelOnlyFromDraft(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 5, 100)

	if _, outcome, _ := svc.Purchase.Submit(po.ID, "test-user-001"); !outcome.OK {
		t.Fatalf("submit blocked: %v", outcome.Violations)
	}

	_, outcome, err := svc.Purchase.Cancel(po.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected cancel from PENDING_APPROVAL to be blocked")
	}

	draft := seedPO(t, svc, db, 3, 50)
	cancelled, outcome, err := svc.Purchase.Cancel(draft.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected cancel from DRAFT to pass: %v", outcome.Violations)
	}
	if cancelled.Status != workflow.POStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
}

func TestPurchaseOrderUpdateRejectsInactiveSupplier(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 5, 100)

	inactive := testutil.SeedSupplier(t, db, "停用供应商")
	db.Model(&entity.Supplier{}).Where("id = ?", inactive.ID).Update("status", entity.SupplierStatusInactive)

	_, outcome, err := svc.Purchase.UpdateDraft(po.ID, UpdatePORequest{SupplierID: inactive.ID})
	if err != nil {
		t.Fatalf("UpdateDraft failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected switch to inactive supplier to be blocked")
	}

	reloaded, _ := svc.Purchase.GetByID(po.ID)
	if reloaded.SupplierID != po.SupplierID {
		t.Errorf("expected supplier untouched, got %s", reloaded.SupplierID)
	}
}

func TestPurchaseOrderTotals(t *testing.T) {
	svc, db := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "总额供应商")
	m1 := testutil.SeedMaterial(t, db, "MAT-T1", "机床主轴", 0)
	m2 := testutil.SeedMaterial(t, db, "MAT-T2", "伺服电机", 0)

	po, err := svc.Purchase.Create(CreatePORequest{
		SupplierID: supplier.ID,
		Items: []POItemInput{
			{MaterialID: m1.ID, Quantity: 5, UnitPrice: 12000000, TaxRate: 10},
			{MaterialID: m2.ID, Quantity: 10, UnitPrice: 4500000, TaxRate: 10},
		},
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create PO failed: %v", err)
	}

	if po.Subtotal != 105000000 {
		t.Errorf("expected subtotal 105000000, got %f", po.Subtotal)
	}
	if po.TaxAmount != 10500000 {
		t.Errorf("expected tax 10500000, got %f", po.TaxAmount)
	}
	if po.TotalAmount != 115500000 {
		t.Errorf("expected total 115500000, got %f", po.TotalAmount)
	}
}

func TestPurchaseOrderUpdateLockedAfterSubmit(t *testing.T) {
	svc, db := setupServices(t)
	po := seedPO(t, svc, db, 5, 100)

	if _, outcome, _ := svc.Purchase.Submit(po.ID, "test-user-001"); !outcome.OK {
		t.Fatalf("submit blocked: %v", outcome.Violations)
	}

	_, outcome, err := svc.Purchase.UpdateDraft(po.ID, UpdatePORequest{SupplierID: po.SupplierID})
	if err != nil {
		t.Fatalf("UpdateDraft failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected update after submit to be blocked")
	}
}
