package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) Create(bom *entity.BOMHeader) error {
	return r.db.Create(bom).Error
}

func (r *BOMRepository) GetByID(id string) (*entity.BOMHeader, error) {
	var bom entity.BOMHeader
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence")
	}).Preload("Product").
		Where("id = ? AND deleted_at IS NULL", id).First(&bom).Error
	return &bom, err
}

func (r *BOMRepository) Update(bom *entity.BOMHeader) error {
	return r.db.Save(bom).Error
}

func (r *BOMRepository) Delete(id string) error {
	return r.db.Model(&entity.BOMHeader{}).Where("id = ?", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

type BOMListParams struct {
	ProductID string
	Status    string
	Page      int
	Size      int
}

func (r *BOMRepository) List(params BOMListParams) ([]entity.BOMHeader, int64, error) {
	query := r.db.Model(&entity.BOMHeader{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var boms []entity.BOMHeader
	err := query.Preload("Product").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&boms).Error
	return boms, total, err
}

// ReplaceItems 整体替换BOM明细行
func (r *BOMRepository) ReplaceItems(bomID string, items []entity.BOMItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_header_id = ?", bomID).Delete(&entity.BOMItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *BOMRepository) GetItemsByBOMID(bomID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.Where("bom_header_id = ?", bomID).Order("sequence").Find(&items).Error
	return items, err
}
