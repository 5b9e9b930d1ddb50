package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(po *entity.PurchaseOrder) error {
	return r.db.Create(po).Error
}

func (r *PurchaseRepository) GetByID(id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.Preload("Supplier").Preload("Items").
		Where("id = ? AND deleted_at IS NULL", id).First(&po).Error
	return &po, err
}

func (r *PurchaseRepository) Update(po *entity.PurchaseOrder) error {
	return r.db.Save(po).Error
}

type POListParams struct {
	Status     string
	SupplierID string
	Keyword    string
	Page       int
	Size       int
}

func (r *PurchaseRepository) List(params POListParams) ([]entity.PurchaseOrder, int64, error) {
	query := r.db.Model(&entity.PurchaseOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.SupplierID != "" {
		query = query.Where("supplier_id = ?", params.SupplierID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("po_code LIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var pos []entity.PurchaseOrder
	err := query.Preload("Supplier").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&pos).Error
	return pos, total, err
}

// ReplaceItems 整体替换订单明细行（仅草稿期调用）
func (r *PurchaseRepository) ReplaceItems(poID string, items []entity.POItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("po_id = ?", poID).Delete(&entity.POItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
