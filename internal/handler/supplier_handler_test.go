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
	"gorm.io/gorm"
)

func setupSupplierTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, nil, "")
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	suppliers := api.Group("/suppliers")
	{
		suppliers.GET("/:id", handlers.Supplier.Get)
		suppliers.DELETE("/:id", middleware.RequireRole("mfg_manager"), handlers.Supplier.Delete)
	}
	return r, db
}

func TestSupplierDeleteRequiresManagerRole(t *testing.T) {
	r, db := setupSupplierTest(t)
	supplier := testutil.SeedSupplier(t, db, "待删除供应商")

	// 普通角色不能删除
	buyer := testutil.GenerateTestToken("buyer-001", "Buyer", "buyer@test.com", []string{"buyer"}, nil)
	w := testutil.DoRequest(r, "DELETE", fmt.Sprintf("/api/v1/suppliers/%s", supplier.ID), nil, buyer)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	var kept entity.Supplier
	if err := db.First(&kept, "id = ? AND deleted_at IS NULL", supplier.ID).Error; err != nil {
		t.Fatalf("expected supplier untouched: %v", err)
	}

	// mfg_manager 可以删除
	manager := testutil.GenerateTestToken("manager-001", "Manager", "manager@test.com", []string{"mfg_manager"}, nil)
	w = testutil.DoRequest(r, "DELETE", fmt.Sprintf("/api/v1/suppliers/%s", supplier.ID), nil, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
