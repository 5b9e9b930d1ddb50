package service

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/testutil"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedMO(t *testing.T, svc *Services, db *gorm.DB, materials []MOMaterialInput) *entity.ManufacturingOrder {
	t.Helper()
	product := testutil.SeedMaterial(t, db, "PRD-"+uuid.New().String()[:8], "数控机床整机", 0)
	if materials == nil {
		component := testutil.SeedMaterial(t, db, "CMP-"+uuid.New().String()[:8], "床身铸件", 8000)
		materials = []MOMaterialInput{{MaterialID: component.ID, Quantity: 2, UnitPrice: 8000, TaxRate: 13}}
	}
	mo, err := svc.Manufacturing.Create(CreateMORequest{
		ProductID:  product.ID,
		PlannedQty: 1,
		Materials:  materials,
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create MO failed: %v", err)
	}
	return mo
}

func TestManufacturingOrderLifecycle(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, nil)

	if mo.Status != workflow.MOStatusDraft {
		t.Fatalf("expected DRAFT, got %s", mo.Status)
	}

	steps := []struct {
		name string
		fn   func(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error)
		want string
	}{
		{"confirm", svc.Manufacturing.Confirm, workflow.MOStatusConfirmed},
		{"start", svc.Manufacturing.Start, workflow.MOStatusInProgress},
		{"pause", svc.Manufacturing.Pause, workflow.MOStatusPaused},
		{"resume", svc.Manufacturing.Resume, workflow.MOStatusInProgress},
		{"finish", svc.Manufacturing.Finish, workflow.MOStatusDone},
	}
	for _, step := range steps {
		got, outcome, err := step.fn(mo.ID, "test-user-001")
		if err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if !outcome.OK {
			t.Fatalf("%s blocked: %v", step.name, outcome.Violations)
		}
		if got.Status != step.want {
			t.Fatalf("%s: expected %s, got %s", step.name, step.want, got.Status)
		}
	}

	done, _ := svc.Manufacturing.GetByID(mo.ID)
	if done.ActualStart == nil || done.ActualEnd == nil {
		t.Error("expected actual start and end to be set")
	}

	// 完工后不可取消
	if _, outcome, _ := svc.Manufacturing.Cancel(mo.ID, "test-user-001"); outcome.OK {
		t.Error("expected cancel from DONE to be blocked")
	}

	logs, _ := svc.Manufacturing.History(mo.ID)
	if len(logs) != 5 {
		t.Errorf("expected 5 status log entries, got %d", len(logs))
	}
}

func TestManufacturingOrderConfirmRequiresMaterials(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, []MOMaterialInput{})

	_, outcome, err := svc.Manufacturing.Confirm(mo.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected confirm without materials to be blocked")
	}

	reloaded, _ := svc.Manufacturing.GetByID(mo.ID)
	if reloaded.Status != workflow.MOStatusDraft {
		t.Errorf("expected status to remain DRAFT, got %s", reloaded.Status)
	}
}

func TestManufacturingOrderIllegalTransitions(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, nil)

	// 草稿不能直接开工/暂停/完工
	if _, outcome, _ := svc.Manufacturing.Start(mo.ID, "test-user-001"); outcome.OK {
		t.Error("expected start from DRAFT to be blocked")
	}
	if _, outcome, _ := svc.Manufacturing.Pause(mo.ID, "test-user-001"); outcome.OK {
		t.Error("expected pause from DRAFT to be blocked")
	}
	if _, outcome, _ := svc.Manufacturing.Finish(mo.ID, "test-user-001"); outcome.OK {
		t.Error("expected finish from DRAFT to be blocked")
	}
}

func TestManufacturingOrderFromBOM(t *testing.T) {
	svc, db := setupServices(t)
	product := testutil.SeedMaterial(t, db, "PRD-"+uuid.New().String()[:8], "伺服驱动器", 0)
	c1 := testutil.SeedMaterial(t, db, "CMP-"+uuid.New().String()[:8], "功率模块", 300)
	c2 := testutil.SeedMaterial(t, db, "CMP-"+uuid.New().String()[:8], "控制板", 150)

	bom, err := svc.BOM.Create(CreateBOMRequest{
		ProductID: product.ID,
		Version:   "A.1",
		Items: []BOMItemInput{
			{MaterialID: c1.ID, Quantity: 1, UnitCost: 300},
			{MaterialID: c2.ID, Quantity: 2, UnitCost: 150},
		},
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create BOM failed: %v", err)
	}

	// 未发布的BOM不能下达
	if _, err := svc.Manufacturing.Create(CreateMORequest{
		ProductID:  product.ID,
		BOMID:      bom.ID,
		PlannedQty: 5,
	}, "test-user-001"); err == nil {
		t.Fatal("expected create from draft BOM to fail")
	}

	if err := svc.BOM.Release(bom.ID); err != nil {
		t.Fatalf("Release BOM failed: %v", err)
	}

	mo, err := svc.Manufacturing.Create(CreateMORequest{
		ProductID:  product.ID,
		BOMID:      bom.ID,
		PlannedQty: 5,
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create MO from BOM failed: %v", err)
	}
	if mo.SourceType != "BOM" {
		t.Errorf("expected source BOM, got %s", mo.SourceType)
	}
	if len(mo.Materials) != 2 {
		t.Fatalf("expected 2 material lines, got %d", len(mo.Materials))
	}
	// BOM 用量按计划数量展开
	for _, m := range mo.Materials {
		switch m.MaterialID {
		case c1.ID:
			if m.Quantity != 5 {
				t.Errorf("expected quantity 5, got %f", m.Quantity)
			}
		case c2.ID:
			if m.Quantity != 10 {
				t.Errorf("expected quantity 10, got %f", m.Quantity)
			}
		}
	}
	// 300*5 + 150*10 = 3000
	if mo.MaterialCost != 3000 {
		t.Errorf("expected material cost 3000, got %f", mo.MaterialCost)
	}
}

func TestManufacturingOrderElapsedExcludesPauses(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mo := &entity.ManufacturingOrder{ActualStart: &start, PausedSecs: 40}

	// 已恢复的暂停段从耗时中扣除
	if got := mo.ElapsedSeconds(start.Add(100 * time.Second)); got != 60 {
		t.Errorf("expected 60s effective elapsed, got %d", got)
	}

	// 暂停中的订单连同当前暂停段一起扣除
	pausedAt := start.Add(80 * time.Second)
	mo.PausedAt = &pausedAt
	if got := mo.ElapsedSeconds(start.Add(100 * time.Second)); got != 40 {
		t.Errorf("expected 40s while paused, got %d", got)
	}

	// 完工订单以实际结束时间为准
	mo.PausedAt = nil
	end := start.Add(90 * time.Second)
	mo.ActualEnd = &end
	if got := mo.ElapsedSeconds(start.Add(1000 * time.Second)); got != 50 {
		t.Errorf("expected 50s after finish, got %d", got)
	}

	// 未开工无耗时
	if got := (&entity.ManufacturingOrder{}).ElapsedSeconds(start); got != 0 {
		t.Errorf("expected 0s before start, got %d", got)
	}
}

func TestManufacturingOrderGetReportsElapsed(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, nil)

	if _, outcome, err := svc.Manufacturing.Confirm(mo.ID, "test-user-001"); err != nil || !outcome.OK {
		t.Fatalf("confirm failed: %v %v", err, outcome.Violations)
	}
	if _, outcome, err := svc.Manufacturing.Start(mo.ID, "test-user-001"); err != nil || !outcome.OK {
		t.Fatalf("start failed: %v %v", err, outcome.Violations)
	}

	// 两小时前开工，其中暂停了半小时
	db.Model(&entity.ManufacturingOrder{}).Where("id = ?", mo.ID).Updates(map[string]interface{}{
		"actual_start": time.Now().Add(-2 * time.Hour),
		"paused_secs":  1800,
	})

	reloaded, err := svc.Manufacturing.GetByID(mo.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.ElapsedSecs < 5395 || reloaded.ElapsedSecs > 5410 {
		t.Errorf("expected roughly 5400s effective elapsed, got %d", reloaded.ElapsedSecs)
	}
}

func TestManufacturingOrderUpdateLockedAfterConfirm(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, nil)

	if _, outcome, err := svc.Manufacturing.Confirm(mo.ID, "test-user-001"); err != nil || !outcome.OK {
		t.Fatalf("confirm failed: %v %v", err, outcome.Violations)
	}

	_, outcome, err := svc.Manufacturing.UpdateDraft(mo.ID, UpdateMORequest{PlannedQty: 3})
	if err != nil {
		t.Fatalf("UpdateDraft failed: %v", err)
	}
	if outcome.OK {
		t.Fatal("expected update after confirm to be blocked")
	}
}

func TestManufacturingOrderEditability(t *testing.T) {
	svc, db := setupServices(t)
	mo := seedMO(t, svc, db, nil)

	edit, transitions, err := svc.Manufacturing.Editability(mo.ID, true)
	if err != nil {
		t.Fatalf("Editability failed: %v", err)
	}
	if !edit.CoreFields || !edit.LineAddRemove {
		t.Error("expected draft MO to be fully editable")
	}
	if len(transitions) != 2 {
		t.Errorf("expected 2 allowed transitions from DRAFT, got %v", transitions)
	}

	if _, outcome, err := svc.Manufacturing.Confirm(mo.ID, "test-user-001"); err != nil || !outcome.OK {
		t.Fatalf("confirm failed: %v %v", err, outcome.Violations)
	}

	edit, _, err = svc.Manufacturing.Editability(mo.ID, true)
	if err != nil {
		t.Fatalf("Editability failed: %v", err)
	}
	if edit.CoreFields || edit.LineAddRemove {
		t.Error("expected confirmed MO core fields to be locked")
	}
}
