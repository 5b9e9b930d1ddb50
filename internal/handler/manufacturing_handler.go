package handler

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/gin-gonic/gin"
)

// ManufacturingHandler 生产订单处理器
type ManufacturingHandler struct {
	svc *service.ManufacturingService
}

func NewManufacturingHandler(svc *service.ManufacturingService) *ManufacturingHandler {
	return &ManufacturingHandler{svc: svc}
}

func (h *ManufacturingHandler) Create(c *gin.Context) {
	var req service.CreateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	mo, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, mo)
}

func (h *ManufacturingHandler) Get(c *gin.Context) {
	mo, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "生产订单不存在")
		return
	}
	Success(c, mo)
}

func (h *ManufacturingHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	orders, total, err := h.svc.List(repository.MOListParams{
		Status:    c.Query("status"),
		ProductID: c.Query("product_id"),
		Keyword:   c.Query("keyword"),
		Page:      page,
		Size:      pageSize,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

func (h *ManufacturingHandler) Update(c *gin.Context) {
	var req service.UpdateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	mo, outcome, err := h.svc.UpdateDraft(c.Param("id"), req)
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Confirm(c *gin.Context) {
	mo, outcome, err := h.svc.Confirm(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Start(c *gin.Context) {
	mo, outcome, err := h.svc.Start(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Pause(c *gin.Context) {
	mo, outcome, err := h.svc.Pause(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Resume(c *gin.Context) {
	mo, outcome, err := h.svc.Resume(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Finish(c *gin.Context) {
	mo, outcome, err := h.svc.Finish(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

func (h *ManufacturingHandler) Cancel(c *gin.Context) {
	mo, outcome, err := h.svc.Cancel(c.Param("id"), GetUserID(c))
	respondOutcome(c, mo, outcome, err)
}

// Editability 表单可编辑策略，edit=true 表示进入编辑态
func (h *ManufacturingHandler) Editability(c *gin.Context) {
	editMode := c.DefaultQuery("edit", "true") == "true"
	edit, transitions, err := h.svc.Editability(c.Param("id"), editMode)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"editability": edit, "allowed_transitions": transitions})
}

func (h *ManufacturingHandler) History(c *gin.Context) {
	logs, err := h.svc.History(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, logs)
}

// respondOutcome 迁移类接口的统一回包：
// 错误走 500，业务违规走 422 并携带违规明细，通过则返回单据
func respondOutcome[T entity.ManufacturingOrder | entity.PurchaseOrder | entity.PurchaseInvoice](c *gin.Context, doc *T, outcome workflow.Outcome, err error) {
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if !outcome.OK {
		Blocked(c, outcome)
		return
	}
	Success(c, doc)
}
