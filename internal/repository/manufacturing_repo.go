package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type ManufacturingRepository struct {
	db *gorm.DB
}

func NewManufacturingRepository(db *gorm.DB) *ManufacturingRepository {
	return &ManufacturingRepository{db: db}
}

func (r *ManufacturingRepository) Create(mo *entity.ManufacturingOrder) error {
	return r.db.Create(mo).Error
}

func (r *ManufacturingRepository) GetByID(id string) (*entity.ManufacturingOrder, error) {
	var mo entity.ManufacturingOrder
	err := r.db.Preload("Materials").
		Where("id = ? AND deleted_at IS NULL", id).First(&mo).Error
	return &mo, err
}

func (r *ManufacturingRepository) Update(mo *entity.ManufacturingOrder) error {
	return r.db.Save(mo).Error
}

type MOListParams struct {
	Status    string
	ProductID string
	Keyword   string
	Page      int
	Size      int
}

func (r *ManufacturingRepository) List(params MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	query := r.db.Model(&entity.ManufacturingOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("mo_code LIKE ? OR product_name LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.ManufacturingOrder
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// ReplaceMaterials 整体替换物料明细行（仅草稿期调用）
func (r *ManufacturingRepository) ReplaceMaterials(orderID string, materials []entity.MOMaterial) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&entity.MOMaterial{}).Error; err != nil {
			return err
		}
		if len(materials) == 0 {
			return nil
		}
		return tx.Create(&materials).Error
	})
}
