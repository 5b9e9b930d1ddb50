package entity

import (
	"time"
)

// ManufacturingOrder 生产订单
// 状态机见 internal/workflow: DRAFT → CONFIRMED → IN_PROGRESS → DONE，
// IN_PROGRESS ⇄ PAUSED，非终态均可取消
type ManufacturingOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	MOCode       string     `json:"mo_code" gorm:"size:50;not null;uniqueIndex"`
	ProductID    string     `json:"product_id" gorm:"size:36;not null;index"`
	ProductCode  string     `json:"product_code" gorm:"size:64"`
	ProductName  string     `json:"product_name" gorm:"size:128"`
	BOMID        *string    `json:"bom_id" gorm:"size:36"`
	WorkCenterID string     `json:"work_center_id" gorm:"size:36"`
	PlannedQty   float64    `json:"planned_qty" gorm:"type:decimal(15,4);not null"`
	Status       string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	SourceType   string     `json:"source_type" gorm:"size:20"` // BOM, MANUAL
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
	ActualStart  *time.Time `json:"actual_start"`
	ActualEnd    *time.Time `json:"actual_end"`
	PausedAt     *time.Time `json:"paused_at"`
	PausedSecs   int64      `json:"paused_secs" gorm:"default:0"` // 暂停累计时长
	ElapsedSecs  int64      `json:"elapsed_secs" gorm:"-"`        // 有效耗时，读取时派生
	MaterialCost float64    `json:"material_cost" gorm:"type:decimal(15,2);default:0"`
	TaxAmount    float64    `json:"tax_amount" gorm:"type:decimal(15,2);default:0"`
	TotalCost    float64    `json:"total_cost" gorm:"type:decimal(15,2);default:0"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Materials []MOMaterial `json:"materials,omitempty" gorm:"foreignKey:OrderID"`
}

func (ManufacturingOrder) TableName() string {
	return "mfg_manufacturing_orders"
}

// ElapsedSeconds 开工以来的有效耗时（扣除暂停时间）
func (mo *ManufacturingOrder) ElapsedSeconds(now time.Time) int64 {
	if mo.ActualStart == nil {
		return 0
	}
	end := now
	if mo.ActualEnd != nil {
		end = *mo.ActualEnd
	}
	elapsed := int64(end.Sub(*mo.ActualStart).Seconds()) - mo.PausedSecs
	if mo.PausedAt != nil {
		elapsed -= int64(now.Sub(*mo.PausedAt).Seconds())
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// MOMaterial 生产订单物料明细
type MOMaterial struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID      string    `json:"order_id" gorm:"size:36;not null;index"`
	MaterialID   string    `json:"material_id" gorm:"size:36;not null"`
	MaterialCode string    `json:"material_code" gorm:"size:64"`
	MaterialName string    `json:"material_name" gorm:"size:128"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	Unit         string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitPrice    float64   `json:"unit_price" gorm:"type:decimal(15,4);default:0"`
	TaxRate      float64   `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MOMaterial) TableName() string {
	return "mfg_mo_materials"
}
