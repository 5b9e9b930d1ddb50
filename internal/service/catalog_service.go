package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 选择器列表缓存键
const (
	optionsKeyMaterials   = "mfg:options:materials"
	optionsKeySuppliers   = "mfg:options:suppliers"
	optionsKeyWorkCenters = "mfg:options:work_centers"
	optionsKeyUnits       = "mfg:options:units"

	optionsCacheTTL = 5 * time.Minute
)

// Option 选择器条目，前端下拉框只消费 id/label
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type CatalogService struct {
	catalogRepo  *repository.CatalogRepository
	supplierRepo *repository.SupplierRepository
	rdb          *redis.Client
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, supplierRepo *repository.SupplierRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, supplierRepo: supplierRepo, rdb: rdb}
}

// --- Material ---

type MaterialRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	StandardCost float64 `json:"standard_cost"`
	Description  string  `json:"description"`
}

func (s *CatalogService) CreateMaterial(ctx context.Context, req MaterialRequest, userID string) (*entity.Material, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	m := &entity.Material{
		ID:           uuid.New().String(),
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		Unit:         unit,
		Status:       entity.MaterialStatusActive,
		StandardCost: req.StandardCost,
		Description:  req.Description,
		CreatedBy:    userID,
	}
	if err := s.catalogRepo.CreateMaterial(m); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	s.invalidateOptions(ctx, optionsKeyMaterials)
	return m, nil
}

func (s *CatalogService) UpdateMaterial(ctx context.Context, id string, req MaterialRequest) (*entity.Material, error) {
	m, err := s.catalogRepo.GetMaterialByID(id)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	m.Code = req.Code
	m.Name = req.Name
	m.Category = req.Category
	if req.Unit != "" {
		m.Unit = req.Unit
	}
	m.StandardCost = req.StandardCost
	m.Description = req.Description
	if err := s.catalogRepo.UpdateMaterial(m); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	s.invalidateOptions(ctx, optionsKeyMaterials)
	return m, nil
}

func (s *CatalogService) DeleteMaterial(ctx context.Context, id string) error {
	if _, err := s.catalogRepo.GetMaterialByID(id); err != nil {
		return fmt.Errorf("物料不存在: %w", err)
	}
	if err := s.catalogRepo.DeleteMaterial(id); err != nil {
		return err
	}
	s.invalidateOptions(ctx, optionsKeyMaterials)
	return nil
}

func (s *CatalogService) GetMaterial(id string) (*entity.Material, error) {
	return s.catalogRepo.GetMaterialByID(id)
}

func (s *CatalogService) ListMaterials(params repository.MaterialListParams) ([]entity.Material, int64, error) {
	return s.catalogRepo.ListMaterials(params)
}

// --- Unit of Measure ---

type UnitRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Integral bool   `json:"integral"`
}

func (s *CatalogService) CreateUnit(ctx context.Context, req UnitRequest) (*entity.UnitOfMeasure, error) {
	u := &entity.UnitOfMeasure{
		ID:       uuid.New().String(),
		Code:     req.Code,
		Name:     req.Name,
		Integral: req.Integral,
	}
	if err := s.catalogRepo.CreateUnit(u); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	s.invalidateOptions(ctx, optionsKeyUnits)
	return u, nil
}

func (s *CatalogService) ListUnits() ([]entity.UnitOfMeasure, error) {
	return s.catalogRepo.ListUnits()
}

// --- Work Center ---

type WorkCenterRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	CostPerHour float64 `json:"cost_per_hour"`
	Description string  `json:"description"`
}

func (s *CatalogService) CreateWorkCenter(ctx context.Context, req WorkCenterRequest) (*entity.WorkCenter, error) {
	wc := &entity.WorkCenter{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Name:        req.Name,
		Status:      "ACTIVE",
		CostPerHour: req.CostPerHour,
		Description: req.Description,
	}
	if err := s.catalogRepo.CreateWorkCenter(wc); err != nil {
		return nil, fmt.Errorf("failed to create work center: %w", err)
	}
	s.invalidateOptions(ctx, optionsKeyWorkCenters)
	return wc, nil
}

func (s *CatalogService) ListWorkCenters() ([]entity.WorkCenter, error) {
	return s.catalogRepo.ListWorkCenters()
}

// --- Options (选择器列表，Redis 缓存) ---

// Options 返回指定类型的选择器列表。缓存未命中时回源并写缓存
func (s *CatalogService) Options(ctx context.Context, kind string) ([]Option, error) {
	key, ok := optionsKey(kind)
	if !ok {
		return nil, fmt.Errorf("未知的选择器类型: %s", kind)
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var options []Option
			if json.Unmarshal([]byte(cached), &options) == nil {
				return options, nil
			}
		}
	}

	options, err := s.loadOptions(kind)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(options); err == nil {
			s.rdb.Set(ctx, key, data, optionsCacheTTL)
		}
	}
	return options, nil
}

func (s *CatalogService) loadOptions(kind string) ([]Option, error) {
	options := []Option{}
	switch kind {
	case "materials":
		materials, _, err := s.catalogRepo.ListMaterials(repository.MaterialListParams{Size: 1000})
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			options = append(options, Option{ID: m.ID, Label: fmt.Sprintf("%s %s", m.Code, m.Name)})
		}
	case "suppliers":
		suppliers, _, err := s.supplierRepo.List(repository.SupplierListParams{Status: entity.SupplierStatusActive, Size: 1000})
		if err != nil {
			return nil, err
		}
		for _, sup := range suppliers {
			options = append(options, Option{ID: sup.ID, Label: sup.Name})
		}
	case "work-centers":
		centers, err := s.catalogRepo.ListWorkCenters()
		if err != nil {
			return nil, err
		}
		for _, wc := range centers {
			options = append(options, Option{ID: wc.ID, Label: wc.Name})
		}
	case "units":
		units, err := s.catalogRepo.ListUnits()
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			options = append(options, Option{ID: u.ID, Label: u.Name})
		}
	}
	return options, nil
}

func optionsKey(kind string) (string, bool) {
	switch kind {
	case "materials":
		return optionsKeyMaterials, true
	case "suppliers":
		return optionsKeySuppliers, true
	case "work-centers":
		return optionsKeyWorkCenters, true
	case "units":
		return optionsKeyUnits, true
	}
	return "", false
}

func (s *CatalogService) invalidateOptions(ctx context.Context, key string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, key)
	}
}

// InvalidateSupplierOptions 供应商变更后由 SupplierService 调用
func (s *CatalogService) InvalidateSupplierOptions(ctx context.Context) {
	s.invalidateOptions(ctx, optionsKeySuppliers)
}
