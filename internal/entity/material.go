package entity

import (
	"time"
)

// MaterialStatus 物料状态
const (
	MaterialStatusActive   = "ACTIVE"
	MaterialStatusInactive = "INACTIVE"
)

// Material 物料/产品主数据
type Material struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Code         string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Category     string     `json:"category" gorm:"size:64"`
	Unit         string     `json:"unit" gorm:"size:16;not null;default:pcs"`
	Status       string     `json:"status" gorm:"size:16;not null;default:ACTIVE"`
	StandardCost float64    `json:"standard_cost" gorm:"type:decimal(15,4);default:0"`
	Description  string     `json:"description" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Material) TableName() string {
	return "mfg_materials"
}

// UnitOfMeasure 计量单位
type UnitOfMeasure struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Code      string    `json:"code" gorm:"size:16;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Integral  bool      `json:"integral" gorm:"default:false"` // 仅允许整数数量
	CreatedAt time.Time `json:"created_at"`
}

func (UnitOfMeasure) TableName() string {
	return "mfg_units_of_measure"
}

// WorkCenter 工作中心
type WorkCenter struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Code        string     `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	Status      string     `json:"status" gorm:"size:16;not null;default:ACTIVE"`
	CostPerHour float64    `json:"cost_per_hour" gorm:"type:decimal(12,2);default:0"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`
}

func (WorkCenter) TableName() string {
	return "mfg_work_centers"
}
