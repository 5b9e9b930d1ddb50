package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(inv *entity.PurchaseInvoice) error {
	return r.db.Create(inv).Error
}

func (r *InvoiceRepository) GetByID(id string) (*entity.PurchaseInvoice, error) {
	var inv entity.PurchaseInvoice
	err := r.db.Preload("Supplier").Preload("Items").
		Where("id = ? AND deleted_at IS NULL", id).First(&inv).Error
	return &inv, err
}

func (r *InvoiceRepository) Update(inv *entity.PurchaseInvoice) error {
	return r.db.Save(inv).Error
}

type InvoiceListParams struct {
	Status     string
	Source     string
	SupplierID string
	Keyword    string
	Page       int
	Size       int
}

func (r *InvoiceRepository) List(params InvoiceListParams) ([]entity.PurchaseInvoice, int64, error) {
	query := r.db.Model(&entity.PurchaseInvoice{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}
	if params.SupplierID != "" {
		query = query.Where("supplier_id = ?", params.SupplierID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("invoice_code LIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var invoices []entity.PurchaseInvoice
	err := query.Preload("Supplier").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&invoices).Error
	return invoices, total, err
}

// ReplaceItems 整体替换发票明细行（仅草稿期调用）
func (r *InvoiceRepository) ReplaceItems(invoiceID string, items []entity.InvoiceItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoiceID).Delete(&entity.InvoiceItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// PostWithPOItems 发票过账与来源PO行已开票数量推进放在同一事务
func (r *InvoiceRepository) PostWithPOItems(inv *entity.PurchaseInvoice, poItems []entity.POItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		for i := range poItems {
			if err := tx.Save(&poItems[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
