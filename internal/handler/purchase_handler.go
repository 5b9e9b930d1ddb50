package handler

import (
	"fmt"
	"net/http"

	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler 采购订单处理器
type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	po, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, po)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	po, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "采购订单不存在")
		return
	}
	Success(c, po)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	orders, total, err := h.svc.List(repository.POListParams{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Size:       pageSize,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	var req service.UpdatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	po, outcome, err := h.svc.UpdateDraft(c.Param("id"), req)
	respondOutcome(c, po, outcome, err)
}

func (h *PurchaseHandler) Submit(c *gin.Context) {
	po, outcome, err := h.svc.Submit(c.Param("id"), GetUserID(c))
	respondOutcome(c, po, outcome, err)
}

func (h *PurchaseHandler) Approve(c *gin.Context) {
	po, outcome, err := h.svc.Approve(c.Param("id"), GetUserID(c))
	respondOutcome(c, po, outcome, err)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *PurchaseHandler) Reject(c *gin.Context) {
	var req rejectRequest
	c.ShouldBindJSON(&req)
	po, outcome, err := h.svc.Reject(c.Param("id"), GetUserID(c), req.Reason)
	respondOutcome(c, po, outcome, err)
}

func (h *PurchaseHandler) Cancel(c *gin.Context) {
	po, outcome, err := h.svc.Cancel(c.Param("id"), GetUserID(c))
	respondOutcome(c, po, outcome, err)
}

// Editability 表单可编辑策略
func (h *PurchaseHandler) Editability(c *gin.Context) {
	editMode := c.DefaultQuery("edit", "true") == "true"
	edit, transitions, err := h.svc.Editability(c.Param("id"), editMode)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"editability": edit, "allowed_transitions": transitions})
}

func (h *PurchaseHandler) History(c *gin.Context) {
	logs, err := h.svc.History(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, logs)
}

// Export 导出采购订单为 xlsx
func (h *PurchaseHandler) Export(c *gin.Context) {
	data, fileName, err := h.svc.ExportXLSX(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
