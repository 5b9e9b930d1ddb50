package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Catalog       *CatalogRepository
	Supplier      *SupplierRepository
	BOM           *BOMRepository
	Manufacturing *ManufacturingRepository
	Purchase      *PurchaseRepository
	Invoice       *InvoiceRepository
	Attachment    *AttachmentRepository
	StatusLog     *StatusLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Catalog:       NewCatalogRepository(db),
		Supplier:      NewSupplierRepository(db),
		BOM:           NewBOMRepository(db),
		Manufacturing: NewManufacturingRepository(db),
		Purchase:      NewPurchaseRepository(db),
		Invoice:       NewInvoiceRepository(db),
		Attachment:    NewAttachmentRepository(db),
		StatusLog:     NewStatusLogRepository(db),
	}
}
