package workflow

// DocType 单据类型
type DocType string

const (
	DocManufacturingOrder DocType = "MO"
	DocPurchaseOrder      DocType = "PO"
	DocPurchaseInvoice    DocType = "INVOICE"
)

// 生产订单状态
const (
	MOStatusDraft      = "DRAFT"
	MOStatusConfirmed  = "CONFIRMED"
	MOStatusInProgress = "IN_PROGRESS"
	MOStatusPaused     = "PAUSED"
	MOStatusDone       = "DONE"
	MOStatusCancelled  = "CANCELLED"
)

// 采购订单状态
const (
	POStatusDraft     = "DRAFT"
	POStatusPending   = "PENDING_APPROVAL"
	POStatusApproved  = "APPROVED"
	POStatusRejected  = "REJECTED"
	POStatusCancelled = "CANCELLED"
)

// 采购发票状态
const (
	InvStatusDraft     = "DRAFT"
	InvStatusPosted    = "POSTED"
	InvStatusPaid      = "PAID"
	InvStatusCancelled = "CANCELLED"
)

// 发票来源
const (
	SourcePO     = "PO"
	SourceManual = "MANUAL"
)

// Machine 通用单据状态机，每种单据类型一张迁移表
type Machine struct {
	docType     DocType
	transitions map[string][]string
}

var machines = map[DocType]*Machine{
	DocManufacturingOrder: {
		docType: DocManufacturingOrder,
		transitions: map[string][]string{
			MOStatusDraft:      {MOStatusConfirmed, MOStatusCancelled},
			MOStatusConfirmed:  {MOStatusInProgress, MOStatusCancelled},
			MOStatusInProgress: {MOStatusPaused, MOStatusDone, MOStatusCancelled},
			MOStatusPaused:     {MOStatusInProgress, MOStatusCancelled},
			MOStatusDone:       {},
			MOStatusCancelled:  {},
		},
	},
	DocPurchaseOrder: {
		docType: DocPurchaseOrder,
		transitions: map[string][]string{
			POStatusDraft:     {POStatusPending, POStatusCancelled},
			POStatusPending:   {POStatusApproved, POStatusRejected},
			POStatusApproved:  {},
			POStatusRejected:  {},
			POStatusCancelled: {},
		},
	},
	DocPurchaseInvoice: {
		docType: DocPurchaseInvoice,
		transitions: map[string][]string{
			InvStatusDraft:     {InvStatusPosted, InvStatusCancelled},
			InvStatusPosted:    {InvStatusPaid},
			InvStatusPaid:      {},
			InvStatusCancelled: {},
		},
	},
}

// MachineFor 返回指定单据类型的状态机
func MachineFor(docType DocType) *Machine {
	return machines[docType]
}

// CanTransition 判断状态迁移是否合法
func (m *Machine) CanTransition(from, to string) bool {
	allowed, ok := m.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions 返回某状态的合法目标状态
func (m *Machine) AllowedTransitions(from string) []string {
	allowed, ok := m.transitions[from]
	if !ok {
		return []string{}
	}
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal 判断是否终态
func (m *Machine) IsTerminal(status string) bool {
	allowed, ok := m.transitions[status]
	return ok && len(allowed) == 0
}

// KnownStatus 判断状态是否属于该单据类型
func (m *Machine) KnownStatus(status string) bool {
	_, ok := m.transitions[status]
	return ok
}
