package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Material{},
		&UnitOfMeasure{},
		&WorkCenter{},
		&Supplier{},

		// BOM
		&BOMHeader{},
		&BOMItem{},

		// 生产
		&ManufacturingOrder{},
		&MOMaterial{},

		// 采购
		&PurchaseOrder{},
		&POItem{},

		// 发票
		&PurchaseInvoice{},
		&InvoiceItem{},

		// 附件与流转记录
		&Attachment{},
		&StatusLog{},
	)
}
