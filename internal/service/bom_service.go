package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/google/uuid"
)

type BOMService struct {
	bomRepo     *repository.BOMRepository
	catalogRepo *repository.CatalogRepository
}

func NewBOMService(bomRepo *repository.BOMRepository, catalogRepo *repository.CatalogRepository) *BOMService {
	return &BOMService{bomRepo: bomRepo, catalogRepo: catalogRepo}
}

type BOMItemInput struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Unit       string  `json:"unit"`
	UnitCost   float64 `json:"unit_cost"`
	Notes      string  `json:"notes"`
}

type CreateBOMRequest struct {
	ProductID   string         `json:"product_id" binding:"required"`
	Version     string         `json:"version" binding:"required"`
	Description string         `json:"description"`
	Items       []BOMItemInput `json:"items" binding:"required,min=1"`
}

func (s *BOMService) Create(req CreateBOMRequest, userID string) (*entity.BOMHeader, error) {
	if _, err := s.catalogRepo.GetMaterialByID(req.ProductID); err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}

	bom := &entity.BOMHeader{
		ID:          uuid.New().String(),
		ProductID:   req.ProductID,
		Version:     req.Version,
		Status:      entity.BOMStatusDraft,
		Description: req.Description,
		CreatedBy:   userID,
	}

	items, err := s.buildItems(bom.ID, req.Items)
	if err != nil {
		return nil, err
	}
	bom.Items = items

	if err := s.bomRepo.Create(bom); err != nil {
		return nil, fmt.Errorf("failed to create BOM: %w", err)
	}
	return bom, nil
}

func (s *BOMService) GetByID(id string) (*entity.BOMHeader, error) {
	return s.bomRepo.GetByID(id)
}

func (s *BOMService) List(params repository.BOMListParams) ([]entity.BOMHeader, int64, error) {
	return s.bomRepo.List(params)
}

type UpdateBOMRequest struct {
	Description string         `json:"description"`
	Items       []BOMItemInput `json:"items" binding:"required,min=1"`
}

func (s *BOMService) Update(id string, req UpdateBOMRequest) (*entity.BOMHeader, error) {
	bom, err := s.bomRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("BOM不存在: %w", err)
	}
	if bom.Status != entity.BOMStatusDraft {
		return nil, fmt.Errorf("只有草稿状态的BOM可以修改")
	}

	items, err := s.buildItems(bom.ID, req.Items)
	if err != nil {
		return nil, err
	}
	if err := s.bomRepo.ReplaceItems(bom.ID, items); err != nil {
		return nil, fmt.Errorf("failed to replace BOM items: %w", err)
	}

	bom.Description = req.Description
	if err := s.bomRepo.Update(bom); err != nil {
		return nil, fmt.Errorf("failed to update BOM: %w", err)
	}
	return s.bomRepo.GetByID(id)
}

// Release 发布BOM，发布后可被生产订单引用
func (s *BOMService) Release(id string) error {
	bom, err := s.bomRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("BOM不存在: %w", err)
	}
	if bom.Status != entity.BOMStatusDraft {
		return fmt.Errorf("只有草稿状态的BOM可以发布")
	}
	bom.Status = entity.BOMStatusReleased
	return s.bomRepo.Update(bom)
}

func (s *BOMService) Delete(id string) error {
	bom, err := s.bomRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("BOM不存在: %w", err)
	}
	if bom.Status != entity.BOMStatusDraft {
		return fmt.Errorf("只有草稿状态的BOM可以删除")
	}
	return s.bomRepo.Delete(id)
}

func (s *BOMService) buildItems(bomID string, inputs []BOMItemInput) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	for i, input := range inputs {
		mat, err := s.catalogRepo.GetMaterialByID(input.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("物料不存在: %s", input.MaterialID)
		}
		unit := input.Unit
		if unit == "" {
			unit = mat.Unit
		}
		unitCost := input.UnitCost
		if unitCost == 0 {
			unitCost = mat.StandardCost
		}
		items = append(items, entity.BOMItem{
			ID:           uuid.New().String(),
			BOMHeaderID:  bomID,
			MaterialID:   mat.ID,
			MaterialCode: mat.Code,
			MaterialName: mat.Name,
			Quantity:     input.Quantity,
			Unit:         unit,
			UnitCost:     unitCost,
			Sequence:     i + 1,
			Notes:        input.Notes,
		})
	}
	return items, nil
}
