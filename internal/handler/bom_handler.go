package handler

import (
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
)

// BOMHandler 物料清单处理器
type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	bom, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, bom)
}

func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "BOM不存在")
		return
	}
	Success(c, bom)
}

func (h *BOMHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	boms, total, err := h.svc.List(repository.BOMListParams{
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
		Page:      page,
		Size:      pageSize,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: boms, Pagination: NewPagination(page, pageSize, total)})
}

func (h *BOMHandler) Update(c *gin.Context) {
	var req service.UpdateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	bom, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, bom)
}

// Release 发布BOM
func (h *BOMHandler) Release(c *gin.Context) {
	if err := h.svc.Release(c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

func (h *BOMHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}
