package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Catalog       *CatalogHandler
	Supplier      *SupplierHandler
	BOM           *BOMHandler
	Manufacturing *ManufacturingHandler
	Purchase      *PurchaseHandler
	Invoice       *InvoiceHandler
	Attachment    *AttachmentHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Catalog:       NewCatalogHandler(svc.Catalog),
		Supplier:      NewSupplierHandler(svc.Supplier),
		BOM:           NewBOMHandler(svc.BOM),
		Manufacturing: NewManufacturingHandler(svc.Manufacturing),
		Purchase:      NewPurchaseHandler(svc.Purchase),
		Invoice:       NewInvoiceHandler(svc.Invoice),
		Attachment:    NewAttachmentHandler(svc.Attachment),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination 组装分页信息
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: int(total), TotalPages: totalPages}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Blocked 业务校验未通过响应。违规明细作为数据返回，不是错误
func Blocked(c *gin.Context, outcome workflow.Outcome) {
	c.JSON(422, Response{
		Code:    42200,
		Message: "校验未通过",
		Data:    outcome,
	})
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
