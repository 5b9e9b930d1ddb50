package handler

import (
	"fmt"
	"net/http"

	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler 采购发票处理器
type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, err := h.svc.CreateManual(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, inv)
}

type createFromPORequest struct {
	PurchaseOrderID string `json:"purchase_order_id" binding:"required"`
}

// CreateFromPO 从已审批采购订单开票
func (h *InvoiceHandler) CreateFromPO(c *gin.Context) {
	var req createFromPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, err := h.svc.CreateFromPO(req.PurchaseOrderID, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, inv)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "发票不存在")
		return
	}
	Success(c, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	invoices, total, err := h.svc.List(repository.InvoiceListParams{
		Status:     c.Query("status"),
		Source:     c.Query("source"),
		SupplierID: c.Query("supplier_id"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Size:       pageSize,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: invoices, Pagination: NewPagination(page, pageSize, total)})
}

func (h *InvoiceHandler) UpdateHeader(c *gin.Context) {
	var req service.UpdateInvoiceHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, outcome, err := h.svc.UpdateHeader(c.Param("id"), req)
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) AddLine(c *gin.Context) {
	var req service.InvoiceItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, outcome, err := h.svc.AddLine(c.Param("id"), req)
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) RemoveLine(c *gin.Context) {
	inv, outcome, err := h.svc.RemoveLine(c.Param("id"), c.Param("lineId"))
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) UpdateLine(c *gin.Context) {
	var req service.UpdateInvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, outcome, err := h.svc.UpdateLine(c.Param("id"), c.Param("lineId"), req)
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) Post(c *gin.Context) {
	inv, outcome, err := h.svc.Post(c.Param("id"), GetUserID(c))
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) Cancel(c *gin.Context) {
	inv, outcome, err := h.svc.Cancel(c.Param("id"), GetUserID(c))
	respondOutcome(c, inv, outcome, err)
}

func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	inv, outcome, err := h.svc.RecordPayment(c.Param("id"), req, GetUserID(c))
	respondOutcome(c, inv, outcome, err)
}

// Editability 表单可编辑策略
func (h *InvoiceHandler) Editability(c *gin.Context) {
	editMode := c.DefaultQuery("edit", "true") == "true"
	edit, transitions, err := h.svc.Editability(c.Param("id"), editMode)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"editability": edit, "allowed_transitions": transitions})
}

func (h *InvoiceHandler) History(c *gin.Context) {
	logs, err := h.svc.History(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, logs)
}

// Export 导出发票为 xlsx
func (h *InvoiceHandler) Export(c *gin.Context) {
	data, fileName, err := h.svc.ExportXLSX(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// PriceDrift 与来源采购订单的价格偏离提示
func (h *InvoiceHandler) PriceDrift(c *gin.Context) {
	drift, err := h.svc.PriceDrift(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, drift)
}
