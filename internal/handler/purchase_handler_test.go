package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/middleware"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/bitfantasy/nimo-mfg/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupPurchaseTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, nil, "")
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	pos := api.Group("/purchase-orders")
	{
		pos.POST("", handlers.Purchase.Create)
		pos.GET("/:id", handlers.Purchase.Get)
		pos.POST("/:id/submit", handlers.Purchase.Submit)
		pos.POST("/:id/approve", middleware.RequirePermission("po:approve"), handlers.Purchase.Approve)
		pos.POST("/:id/reject", middleware.RequirePermission("po:approve"), handlers.Purchase.Reject)
		pos.GET("/:id/editability", handlers.Purchase.Editability)
	}
	return r, db
}

func TestPurchaseOrderApprovalFlow(t *testing.T) {
	r, db := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	supplier := testutil.SeedSupplier(t, db, "苏州精密机械")
	material := testutil.SeedMaterial(t, db, "MAT-"+uuid.New().String()[:8], "直线导轨", 0)

	// 创建
	w := testutil.DoRequest(r, "POST", "/api/v1/purchase-orders", map[string]interface{}{
		"supplier_id": supplier.ID,
		"items": []map[string]interface{}{
			{"material_id": material.ID, "quantity": 4, "unit_price": 1200.0, "tax_rate": 13.0},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	poID := data["id"].(string)
	if data["status"] != "DRAFT" {
		t.Fatalf("expected DRAFT, got %v", data["status"])
	}

	// 提交审批
	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/submit", poID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != "PENDING_APPROVAL" {
		t.Fatalf("expected PENDING_APPROVAL, got %v", resp["data"])
	}

	// 审批
	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/approve", poID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var po entity.PurchaseOrder
	if err := db.First(&po, "id = ?", poID).Error; err != nil {
		t.Fatalf("load PO: %v", err)
	}
	if po.Status != "APPROVED" {
		t.Errorf("expected APPROVED, got %s", po.Status)
	}
}

func TestPurchaseOrderRejectWithoutReasonReturns422(t *testing.T) {
	r, db := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	supplier := testutil.SeedSupplier(t, db, "驳回供应商")
	material := testutil.SeedMaterial(t, db, "MAT-"+uuid.New().String()[:8], "滚珠丝杠", 0)

	w := testutil.DoRequest(r, "POST", "/api/v1/purchase-orders", map[string]interface{}{
		"supplier_id": supplier.ID,
		"items": []map[string]interface{}{
			{"material_id": material.ID, "quantity": 1, "unit_price": 800.0},
		},
	}, token)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/submit", poID), nil, token)

	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/reject", poID), map[string]interface{}{}, token)
	if w.Code != 422 {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["ok"] != false {
		t.Errorf("expected ok=false, got %v", data["ok"])
	}
}

func TestPurchaseOrderEditabilityEndpoint(t *testing.T) {
	r, db := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	supplier := testutil.SeedSupplier(t, db, "可编辑供应商")
	w := testutil.DoRequest(r, "POST", "/api/v1/purchase-orders", map[string]interface{}{
		"supplier_id": supplier.ID,
	}, token)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(r, "GET", fmt.Sprintf("/api/v1/purchase-orders/%s/editability", poID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	edit := data["editability"].(map[string]interface{})
	if edit["core_fields"] != true {
		t.Errorf("expected core_fields editable in draft, got %v", edit["core_fields"])
	}

	// 浏览态全部锁定
	w = testutil.DoRequest(r, "GET", fmt.Sprintf("/api/v1/purchase-orders/%s/editability?edit=false", poID), nil, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	edit = data["editability"].(map[string]interface{})
	if edit["core_fields"] != false {
		t.Errorf("expected core_fields locked in view mode, got %v", edit["core_fields"])
	}
}

func TestPurchaseOrderApproveRequiresPermission(t *testing.T) {
	r, db := setupPurchaseTest(t)
	admin := testutil.DefaultTestToken()
	buyer := testutil.GenerateTestToken("buyer-001", "Buyer", "buyer@test.com", []string{"buyer"}, []string{"po:read"})

	supplier := testutil.SeedSupplier(t, db, "权限供应商")
	material := testutil.SeedMaterial(t, db, "MAT-"+uuid.New().String()[:8], "直线电机", 0)

	w := testutil.DoRequest(r, "POST", "/api/v1/purchase-orders", map[string]interface{}{
		"supplier_id": supplier.ID,
		"items": []map[string]interface{}{
			{"material_id": material.ID, "quantity": 2, "unit_price": 3000.0},
		},
	}, buyer)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
	testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/submit", poID), nil, buyer)

	// 无审批权限
	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/approve", poID), nil, buyer)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	var po entity.PurchaseOrder
	if err := db.First(&po, "id = ?", poID).Error; err != nil {
		t.Fatalf("load PO: %v", err)
	}
	if po.Status != "PENDING_APPROVAL" {
		t.Errorf("expected PO untouched at PENDING_APPROVAL, got %s", po.Status)
	}

	// 管理员通配权限可审批
	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/purchase-orders/%s/approve", poID), nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPurchaseOrderRequiresAuth(t *testing.T) {
	r, _ := setupPurchaseTest(t)

	w := testutil.DoRequest(r, "POST", "/api/v1/purchase-orders", map[string]interface{}{}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
