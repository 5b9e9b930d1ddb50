package entity

import (
	"time"
)

// PurchaseOrder 采购订单
// 状态机见 internal/workflow: DRAFT → PENDING_APPROVAL → APPROVED，
// 待审批可驳回（终态），草稿可取消
type PurchaseOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	POCode       string     `json:"po_code" gorm:"size:50;not null;uniqueIndex"`
	SupplierID   string     `json:"supplier_id" gorm:"size:36;not null;index"`
	Status       string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Currency     string     `json:"currency" gorm:"size:10;not null;default:CNY"`
	OrderDate    *time.Time `json:"order_date"`
	ExpectedDate *time.Time `json:"expected_date"`
	Subtotal     float64    `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	TaxAmount    float64    `json:"tax_amount" gorm:"type:decimal(15,2);default:0"`
	TotalAmount  float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	RejectReason string     `json:"reject_reason" gorm:"type:text"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64;not null"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	ApprovedBy   string     `json:"approved_by" gorm:"size:64"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Items    []POItem  `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "mfg_purchase_orders"
}

// POItem 采购订单明细。采购数量必须为整数
type POItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	POID         string    `json:"po_id" gorm:"size:36;not null;index"`
	MaterialID   string    `json:"material_id" gorm:"size:36;not null"`
	MaterialCode string    `json:"material_code" gorm:"size:64"`
	MaterialName string    `json:"material_name" gorm:"size:128"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	Unit         string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitPrice    float64   `json:"unit_price" gorm:"type:decimal(15,4);not null"`
	TaxRate      float64   `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	Amount       float64   `json:"amount" gorm:"type:decimal(15,2);not null"`
	InvoicedQty  float64   `json:"invoiced_qty" gorm:"type:decimal(15,4);default:0"` // 已开票数量
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (POItem) TableName() string {
	return "mfg_po_items"
}

// RemainingQty 剩余可开票数量
func (i *POItem) RemainingQty() float64 {
	remaining := i.Quantity - i.InvoicedQty
	if remaining < 0 {
		return 0
	}
	return remaining
}
