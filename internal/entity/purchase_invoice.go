package entity

import (
	"time"
)

// PurchaseInvoice 采购发票
// 状态机见 internal/workflow: DRAFT → POSTED → PAID，
// 草稿且未付款可取消。来源为 PO 时供应商与行增删锁定
type PurchaseInvoice struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	InvoiceCode     string     `json:"invoice_code" gorm:"size:50;not null;uniqueIndex"`
	SupplierID      string     `json:"supplier_id" gorm:"size:36;not null;index"`
	Source          string     `json:"source" gorm:"size:10;not null;default:MANUAL"` // PO, MANUAL
	PurchaseOrderID *string    `json:"purchase_order_id" gorm:"size:36;index"`
	Status          string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Currency        string     `json:"currency" gorm:"size:10;not null;default:CNY"`
	InvoiceDate     *time.Time `json:"invoice_date"`
	DueDate         *time.Time `json:"due_date"`
	Subtotal        float64    `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	TaxAmount       float64    `json:"tax_amount" gorm:"type:decimal(15,2);default:0"`
	TotalAmount     float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	AmountPaid      float64    `json:"amount_paid" gorm:"type:decimal(15,2);default:0"` // 只增不减
	PostedAt        *time.Time `json:"posted_at"`
	PaidAt          *time.Time `json:"paid_at"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Supplier      *Supplier      `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	PurchaseOrder *PurchaseOrder `json:"purchase_order,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	Items         []InvoiceItem  `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (PurchaseInvoice) TableName() string {
	return "mfg_purchase_invoices"
}

// InvoiceItem 采购发票明细。
// Quantity 为原始参考数量（PO 来源时即订单数量，锁定），
// InvoicedQty 为本票开票数量，RemainingQty 为创建时刻来源 PO 行的剩余可开票量
type InvoiceItem struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	InvoiceID     string     `json:"invoice_id" gorm:"size:36;not null;index"`
	POItemID      *string    `json:"po_item_id" gorm:"size:36"`
	MaterialID    string     `json:"material_id" gorm:"size:36"`
	MaterialCode  string     `json:"material_code" gorm:"size:64"`
	MaterialName  string     `json:"material_name" gorm:"size:128"`
	Quantity      float64    `json:"quantity" gorm:"type:decimal(15,4);not null"`
	RemainingQty  *float64   `json:"remaining_qty" gorm:"type:decimal(15,4)"`
	InvoicedQty   float64    `json:"invoiced_qty" gorm:"type:decimal(15,4);not null"`
	Unit          string     `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitPrice     float64    `json:"unit_price" gorm:"type:decimal(15,4);not null"`
	OriginalPrice *float64   `json:"original_price" gorm:"type:decimal(15,4)"`
	TaxRate       float64    `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	Amount        float64    `json:"amount" gorm:"type:decimal(15,2);not null"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (InvoiceItem) TableName() string {
	return "mfg_invoice_items"
}
