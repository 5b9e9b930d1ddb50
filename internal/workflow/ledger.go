package workflow

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrLineNotFound 行不存在
var ErrLineNotFound = errors.New("line not found")

// ErrLineLocked 来源行不允许删除
var ErrLineLocked = errors.New("line is locked")

// Line 单据明细行。数量/价格为浮点存储，金额计算统一走 decimal
type Line struct {
	ID            string   `json:"id"`
	MaterialID    string   `json:"material_id,omitempty"`
	Description   string   `json:"description,omitempty"`
	Quantity      float64  `json:"quantity"`
	RemainingQty  *float64 `json:"remaining_qty,omitempty"` // 来源单剩余可用量，非来源行为空
	UnitPrice     float64  `json:"unit_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	TaxRate       float64  `json:"tax_rate"` // 百分比
	Locked        bool     `json:"locked"`   // 来源行，禁止删除
}

// LinePatch 单字段更新
type LinePatch struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TaxRate     *float64 `json:"tax_rate"`
}

// Totals 单据金额汇总，total = subtotal + tax 恒成立
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Ledger 持有一个单据实例的明细行及其全部派生计算。
// 汇总始终读时派生，不缓存，行数据与金额不会漂移
type Ledger struct {
	lines       []Line
	integralQty bool
}

// NewLedger 创建明细账。integralQty 为 true 时数量必须为整数（采购订单）
func NewLedger(lines []Line, integralQty bool) *Ledger {
	copied := make([]Line, len(lines))
	copy(copied, lines)
	return &Ledger{lines: copied, integralQty: integralQty}
}

// Lines 返回行快照
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len 行数
func (l *Ledger) Len() int {
	return len(l.lines)
}

// AddLine 追加明细行，零值字段填缺省（数量1）
func (l *Ledger) AddLine(defaults Line) Line {
	line := defaults
	if line.Quantity == 0 {
		line.Quantity = 1
	}
	l.lines = append(l.lines, line)
	return line
}

// RemoveLine 删除明细行。锁定行（来源单复制的行）拒绝删除
func (l *Ledger) RemoveLine(id string) error {
	for i := range l.lines {
		if l.lines[i].ID == id {
			if l.lines[i].Locked {
				return ErrLineLocked
			}
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// UpdateLine 按补丁更新单行字段，不做任何即时重算
func (l *Ledger) UpdateLine(id string, patch LinePatch) error {
	for i := range l.lines {
		if l.lines[i].ID != id {
			continue
		}
		if patch.Description != nil {
			l.lines[i].Description = *patch.Description
		}
		if patch.Quantity != nil {
			l.lines[i].Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			l.lines[i].UnitPrice = *patch.UnitPrice
		}
		if patch.TaxRate != nil {
			l.lines[i].TaxRate = *patch.TaxRate
		}
		return nil
	}
	return ErrLineNotFound
}

// Totals 计算金额汇总。行小计 = 数量×单价，行税额按税率单行计算后求和
func (l *Ledger) Totals() Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for _, line := range l.lines {
		lineSubtotal := decimal.NewFromFloat(line.Quantity).
			Mul(decimal.NewFromFloat(line.UnitPrice)).
			Round(2)
		lineTax := lineSubtotal.
			Mul(decimal.NewFromFloat(line.TaxRate)).
			Div(hundred).
			Round(2)
		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(lineTax)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Validate 返回全部行级违规，空切片表示通过。校验失败不阻断，由编排方决定是否拦截迁移
func (l *Ledger) Validate() []Violation {
	var violations []Violation
	for _, line := range l.lines {
		if line.Quantity <= 0 {
			violations = append(violations, Violation{
				LineID:  line.ID,
				Field:   "quantity",
				Message: fmt.Sprintf("明细行 %s 数量必须大于0", lineLabel(line)),
			})
		}
		if l.integralQty && line.Quantity != math.Trunc(line.Quantity) {
			violations = append(violations, Violation{
				LineID:  line.ID,
				Field:   "quantity",
				Message: fmt.Sprintf("明细行 %s 数量必须为整数", lineLabel(line)),
			})
		}
		if line.UnitPrice < 0 {
			violations = append(violations, Violation{
				LineID:  line.ID,
				Field:   "unit_price",
				Message: fmt.Sprintf("明细行 %s 单价不能为负", lineLabel(line)),
			})
		}
		if line.RemainingQty != nil && line.Quantity > *line.RemainingQty {
			violations = append(violations, Violation{
				LineID: line.ID,
				Field:  "quantity",
				Message: fmt.Sprintf("明细行 %s 数量 %.4f 超出剩余可用量 %.4f",
					lineLabel(line), line.Quantity, *line.RemainingQty),
			})
		}
	}
	return violations
}

// PriceDrift 单价偏离原始价格的提示，不阻断任何操作
func (l *Ledger) PriceDrift() []Violation {
	var warnings []Violation
	for _, line := range l.lines {
		if line.OriginalPrice == nil || line.UnitPrice == *line.OriginalPrice {
			continue
		}
		warnings = append(warnings, Violation{
			LineID: line.ID,
			Field:  "unit_price",
			Message: fmt.Sprintf("明细行 %s 单价 %.2f 与原始价格 %.2f 不一致",
				lineLabel(line), line.UnitPrice, *line.OriginalPrice),
		})
	}
	return warnings
}

func lineLabel(line Line) string {
	if line.Description != "" {
		return line.Description
	}
	return line.ID
}
