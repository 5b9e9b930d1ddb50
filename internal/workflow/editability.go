package workflow

// Editability 表单可编辑策略，由 (单据类型, 状态, 来源, 编辑模式) 纯函数推导
type Editability struct {
	CoreFields       bool `json:"core_fields"`       // 头字段、日期、业务字段
	SettlementFields bool `json:"settlement_fields"` // 结算字段（发票已付金额）
	LineEdit         bool `json:"line_edit"`         // 行字段修改
	LineAddRemove    bool `json:"line_add_remove"`   // 行增删
	Supplier         bool `json:"supplier"`          // 供应商/来源选择
}

// EditabilityFor 推导可编辑策略。source 仅对采购发票有意义，其余类型传空串
func EditabilityFor(docType DocType, status, source string, editMode bool) Editability {
	if !editMode {
		return Editability{}
	}

	core := status == initialStatus(docType)

	e := Editability{
		CoreFields: core,
		LineEdit:   core,
	}

	switch docType {
	case DocPurchaseInvoice:
		// 过账后仍可登记付款，核心字段锁定
		e.SettlementFields = true
		// PO 来源的发票锁定供应商与行增删，行数量仍可在草稿期调整
		e.Supplier = core && source == SourceManual
		e.LineAddRemove = core && source == SourceManual
	default:
		e.Supplier = core
		e.LineAddRemove = core
	}

	return e
}

func initialStatus(docType DocType) string {
	switch docType {
	case DocManufacturingOrder:
		return MOStatusDraft
	case DocPurchaseOrder:
		return POStatusDraft
	case DocPurchaseInvoice:
		return InvStatusDraft
	}
	return ""
}
