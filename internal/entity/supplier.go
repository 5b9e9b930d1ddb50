package entity

import (
	"time"
)

// SupplierStatus 供应商状态
const (
	SupplierStatusActive   = "ACTIVE"
	SupplierStatusInactive = "INACTIVE"
)

// Supplier 供应商实体
type Supplier struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	SupplierCode string     `json:"supplier_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	ContactName  string     `json:"contact_name" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:20"`
	Email        string     `json:"email" gorm:"size:100"`
	Address      string     `json:"address" gorm:"size:500"`
	PaymentTerms string     `json:"payment_terms" gorm:"size:100"`
	Status       string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Supplier) TableName() string {
	return "mfg_suppliers"
}
