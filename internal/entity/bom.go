package entity

import (
	"time"
)

// BOMStatus BOM状态
const (
	BOMStatusDraft    = "DRAFT"
	BOMStatusReleased = "RELEASED"
	BOMStatusObsolete = "OBSOLETE"
)

// BOMHeader BOM头表
type BOMHeader struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ProductID   string     `json:"product_id" gorm:"size:36;not null;index"`
	Version     string     `json:"version" gorm:"size:16;not null"`
	Status      string     `json:"status" gorm:"size:16;not null;default:DRAFT"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	Product *Material `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Items   []BOMItem `json:"items,omitempty" gorm:"foreignKey:BOMHeaderID"`
}

func (BOMHeader) TableName() string {
	return "mfg_bom_headers"
}

// BOMItem BOM行项
type BOMItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	BOMHeaderID  string    `json:"bom_header_id" gorm:"size:36;not null;index"`
	MaterialID   string    `json:"material_id" gorm:"size:36;not null"`
	MaterialCode string    `json:"material_code" gorm:"size:64"`
	MaterialName string    `json:"material_name" gorm:"size:128"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	Unit         string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitCost     float64   `json:"unit_cost" gorm:"type:decimal(15,4);default:0"`
	Sequence     int       `json:"sequence" gorm:"not null;default:0"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (BOMItem) TableName() string {
	return "mfg_bom_items"
}
