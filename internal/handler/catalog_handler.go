package handler

import (
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 基础数据处理器：物料、计量单位、工作中心、选择器
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req service.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	m, err := h.svc.CreateMaterial(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, m)
}

func (h *CatalogHandler) GetMaterial(c *gin.Context) {
	m, err := h.svc.GetMaterial(c.Param("id"))
	if err != nil {
		NotFound(c, "物料不存在")
		return
	}
	Success(c, m)
}

func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	page, pageSize := GetPagination(c)
	materials, total, err := h.svc.ListMaterials(repository.MaterialListParams{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: materials, Pagination: NewPagination(page, pageSize, total)})
}

func (h *CatalogHandler) UpdateMaterial(c *gin.Context) {
	var req service.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	m, err := h.svc.UpdateMaterial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, m)
}

func (h *CatalogHandler) DeleteMaterial(c *gin.Context) {
	if err := h.svc.DeleteMaterial(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var req service.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	u, err := h.svc.CreateUnit(c.Request.Context(), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, u)
}

func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.svc.ListUnits()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, units)
}

func (h *CatalogHandler) CreateWorkCenter(c *gin.Context) {
	var req service.WorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	wc, err := h.svc.CreateWorkCenter(c.Request.Context(), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, wc)
}

func (h *CatalogHandler) ListWorkCenters(c *gin.Context) {
	centers, err := h.svc.ListWorkCenters()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, centers)
}

// Options 下拉选择器数据，kind 取 materials/suppliers/work-centers/units
func (h *CatalogHandler) Options(c *gin.Context) {
	options, err := h.svc.Options(c.Request.Context(), c.Param("kind"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, options)
}
