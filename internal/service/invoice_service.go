package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// InvoiceService 采购发票编排。
// 手工发票行可自由增删，PO 来源发票供应商与行集合锁定，
// 过账时回写 PO 行的已开票数量
type InvoiceService struct {
	invRepo      *repository.InvoiceRepository
	poRepo       *repository.PurchaseRepository
	supplierRepo *repository.SupplierRepository
	logRepo      *repository.StatusLogRepository
	machine      *workflow.Machine
}

func NewInvoiceService(invRepo *repository.InvoiceRepository, poRepo *repository.PurchaseRepository, supplierRepo *repository.SupplierRepository, logRepo *repository.StatusLogRepository) *InvoiceService {
	return &InvoiceService{
		invRepo:      invRepo,
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		logRepo:      logRepo,
		machine:      workflow.MachineFor(workflow.DocPurchaseInvoice),
	}
}

type InvoiceItemInput struct {
	MaterialID  string  `json:"material_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	TaxRate     float64 `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	SupplierID  string             `json:"supplier_id" binding:"required"`
	InvoiceDate string             `json:"invoice_date"`
	DueDate     string             `json:"due_date"`
	Notes       string             `json:"notes"`
	Items       []InvoiceItemInput `json:"items"`
}

// CreateManual 创建手工发票
func (s *InvoiceService) CreateManual(req CreateInvoiceRequest, userID string) (*entity.PurchaseInvoice, error) {
	supplier, err := s.supplierRepo.GetByID(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("供应商不存在: %w", err)
	}

	inv := &entity.PurchaseInvoice{
		ID:          uuid.New().String(),
		InvoiceCode: docCode("INV"),
		SupplierID:  supplier.ID,
		Source:      workflow.SourceManual,
		Status:      workflow.InvStatusDraft,
		Currency:    "CNY",
		InvoiceDate: parseDate(req.InvoiceDate),
		DueDate:     parseDate(req.DueDate),
		Notes:       req.Notes,
		CreatedBy:   userID,
	}
	for _, input := range req.Items {
		inv.Items = append(inv.Items, s.manualItem(inv.ID, input))
	}
	s.applyTotals(inv)

	if err := s.invRepo.Create(inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return s.invRepo.GetByID(inv.ID)
}

// CreateFromPO 从已审批的采购订单开票。
// 行集合取 PO 中仍有剩余可开票量的明细，锁定供应商与行增删
func (s *InvoiceService) CreateFromPO(poID, userID string) (*entity.PurchaseInvoice, error) {
	po, err := s.poRepo.GetByID(poID)
	if err != nil {
		return nil, fmt.Errorf("采购订单不存在: %w", err)
	}
	if po.Status != workflow.POStatusApproved {
		return nil, fmt.Errorf("只有已审批的采购订单可以开票")
	}

	inv := &entity.PurchaseInvoice{
		ID:              uuid.New().String(),
		InvoiceCode:     docCode("INV"),
		SupplierID:      po.SupplierID,
		Source:          workflow.SourcePO,
		PurchaseOrderID: &po.ID,
		Status:          workflow.InvStatusDraft,
		Currency:        po.Currency,
		CreatedBy:       userID,
	}

	for _, item := range po.Items {
		remaining := item.RemainingQty()
		if remaining <= 0 {
			continue
		}
		poItemID := item.ID
		originalPrice := item.UnitPrice
		inv.Items = append(inv.Items, entity.InvoiceItem{
			ID:            uuid.New().String(),
			InvoiceID:     inv.ID,
			POItemID:      &poItemID,
			MaterialID:    item.MaterialID,
			MaterialCode:  item.MaterialCode,
			MaterialName:  item.MaterialName,
			Quantity:      item.Quantity,
			RemainingQty:  &remaining,
			InvoicedQty:   remaining,
			Unit:          item.Unit,
			UnitPrice:     item.UnitPrice,
			OriginalPrice: &originalPrice,
			TaxRate:       item.TaxRate,
			Amount:        lineAmount(remaining, item.UnitPrice),
		})
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("采购订单已全部开票")
	}
	s.applyTotals(inv)

	if err := s.invRepo.Create(inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return s.invRepo.GetByID(inv.ID)
}

func (s *InvoiceService) GetByID(id string) (*entity.PurchaseInvoice, error) {
	return s.invRepo.GetByID(id)
}

func (s *InvoiceService) List(params repository.InvoiceListParams) ([]entity.PurchaseInvoice, int64, error) {
	return s.invRepo.List(params)
}

type UpdateInvoiceHeaderRequest struct {
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`
	Notes       string `json:"notes"`
}

// UpdateHeader 头字段（日期、备注）编辑，仅草稿期允许。
// 过账后只开放付款登记，走 RecordPayment
func (s *InvoiceService) UpdateHeader(id string, req UpdateInvoiceHeaderRequest) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocPurchaseInvoice, inv.Status, inv.Source, true)
	if !edit.CoreFields {
		return nil, workflow.BlockedMsg(fmt.Sprintf("当前状态不允许编辑: %s", inv.Status)), nil
	}

	inv.InvoiceDate = parseDate(req.InvoiceDate)
	inv.DueDate = parseDate(req.DueDate)
	inv.Notes = req.Notes
	if err := s.invRepo.Update(inv); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, workflow.Passed(), nil
}

// AddLine 追加明细行，仅手工来源的草稿发票允许
func (s *InvoiceService) AddLine(id string, input InvoiceItemInput) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocPurchaseInvoice, inv.Status, inv.Source, true)
	if !edit.LineAddRemove {
		return nil, workflow.BlockedMsg("当前发票不允许增删明细行"), nil
	}

	inv.Items = append(inv.Items, s.manualItem(inv.ID, input))
	return s.saveWithTotals(inv)
}

// RemoveLine 删除明细行，仅手工来源的草稿发票允许
func (s *InvoiceService) RemoveLine(id, lineID string) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocPurchaseInvoice, inv.Status, inv.Source, true)
	if !edit.LineAddRemove {
		return nil, workflow.BlockedMsg("当前发票不允许增删明细行"), nil
	}

	kept := inv.Items[:0]
	found := false
	for _, item := range inv.Items {
		if item.ID == lineID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, workflow.BlockedMsg("明细行不存在"), nil
	}
	inv.Items = kept
	return s.saveWithTotals(inv)
}

type UpdateInvoiceLineRequest struct {
	Quantity  *float64 `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
	TaxRate   *float64 `json:"tax_rate"`
}

// UpdateLine 修改明细行数量/单价/税率。
// PO 来源发票允许改开票数量与价格，不允许换物料
func (s *InvoiceService) UpdateLine(id, lineID string, req UpdateInvoiceLineRequest) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocPurchaseInvoice, inv.Status, inv.Source, true)
	if !edit.LineEdit {
		return nil, workflow.BlockedMsg(fmt.Sprintf("当前状态不允许编辑明细: %s", inv.Status)), nil
	}

	found := false
	for i := range inv.Items {
		if inv.Items[i].ID != lineID {
			continue
		}
		found = true
		if req.Quantity != nil {
			inv.Items[i].InvoicedQty = *req.Quantity
		}
		if req.UnitPrice != nil {
			inv.Items[i].UnitPrice = *req.UnitPrice
		}
		if req.TaxRate != nil {
			inv.Items[i].TaxRate = *req.TaxRate
		}
		inv.Items[i].Amount = lineAmount(inv.Items[i].InvoicedQty, inv.Items[i].UnitPrice)
	}
	if !found {
		return nil, workflow.BlockedMsg("明细行不存在"), nil
	}
	return s.saveWithTotals(inv)
}

// Post 过账。全量校验明细，按当前 PO 行剩余量复核，
// 发票落账与 PO 行已开票数量回写在同一事务内
func (s *InvoiceService) Post(id, userID string) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	if !s.machine.CanTransition(inv.Status, workflow.InvStatusPosted) {
		return nil, workflow.BlockedMsg(fmt.Sprintf("状态 %s 不允许过账", inv.Status)), nil
	}
	if len(inv.Items) == 0 {
		return nil, workflow.BlockedMsg("至少需要一条发票明细"), nil
	}

	poItems, outcome, err := s.checkAgainstPO(inv)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if !outcome.OK {
		return nil, outcome, nil
	}
	if violations := s.ledgerFor(inv).Validate(); len(violations) > 0 {
		return nil, workflow.Blocked(violations...), nil
	}

	from := inv.Status
	now := time.Now()
	inv.Status = workflow.InvStatusPosted
	inv.PostedAt = &now
	s.applyTotals(inv)

	if err := s.invRepo.PostWithPOItems(inv, poItems); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to post invoice: %w", err)
	}
	s.logTransition(inv, from, workflow.InvStatusPosted, userID, "")
	return inv, workflow.Passed(), nil
}

// Cancel 取消。仅草稿且未收到任何付款
func (s *InvoiceService) Cancel(id, userID string) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	if !s.machine.CanTransition(inv.Status, workflow.InvStatusCancelled) {
		return nil, workflow.BlockedMsg(fmt.Sprintf("状态 %s 不允许取消", inv.Status)), nil
	}
	if inv.AmountPaid > 0 {
		return nil, workflow.BlockedMsg("已有付款的发票不能取消"), nil
	}

	from := inv.Status
	inv.Status = workflow.InvStatusCancelled
	if err := s.invRepo.Update(inv); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to cancel invoice: %w", err)
	}
	s.logTransition(inv, from, workflow.InvStatusCancelled, userID, "")
	return inv, workflow.Passed(), nil
}

type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// RecordPayment 登记付款。累计金额只增不减且不超过发票总额，
// 付清时自动迁移到 PAID
func (s *InvoiceService) RecordPayment(id string, req RecordPaymentRequest, userID string) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("发票不存在: %w", err)
	}
	if inv.Status != workflow.InvStatusPosted {
		return nil, workflow.BlockedMsg("只有已过账的发票可以登记付款"), nil
	}

	paid := decimal.NewFromFloat(inv.AmountPaid).Add(decimal.NewFromFloat(req.Amount)).Round(2)
	total := decimal.NewFromFloat(inv.TotalAmount)
	if paid.GreaterThan(total) {
		return nil, workflow.BlockedMsg(fmt.Sprintf("付款累计 %.2f 超过发票总额 %.2f", paid.InexactFloat64(), inv.TotalAmount)), nil
	}

	inv.AmountPaid = paid.InexactFloat64()
	if paid.Equal(total) {
		from := inv.Status
		now := time.Now()
		inv.Status = workflow.InvStatusPaid
		inv.PaidAt = &now
		if err := s.invRepo.Update(inv); err != nil {
			return nil, workflow.Outcome{}, fmt.Errorf("failed to record payment: %w", err)
		}
		s.logTransition(inv, from, workflow.InvStatusPaid, userID, "")
		return inv, workflow.Passed(), nil
	}

	if err := s.invRepo.Update(inv); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to record payment: %w", err)
	}
	return inv, workflow.Passed(), nil
}

// Editability 表单可编辑策略
func (s *InvoiceService) Editability(id string, editMode bool) (workflow.Editability, []string, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return workflow.Editability{}, nil, fmt.Errorf("发票不存在: %w", err)
	}
	return workflow.EditabilityFor(workflow.DocPurchaseInvoice, inv.Status, inv.Source, editMode),
		s.machine.AllowedTransitions(inv.Status), nil
}

// History 状态流转记录
func (s *InvoiceService) History(id string) ([]entity.StatusLog, error) {
	return s.logRepo.ListByDoc(string(workflow.DocPurchaseInvoice), id)
}

// ExportXLSX 导出发票明细
func (s *InvoiceService) ExportXLSX(id string) ([]byte, string, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, "", fmt.Errorf("发票不存在: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headers := []string{"物料编码", "名称", "开票数量", "单位", "单价", "税率(%)", "金额"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, item := range inv.Items {
		values := []interface{}{item.MaterialCode, item.MaterialName, item.InvoicedQty, item.Unit, item.UnitPrice, item.TaxRate, item.Amount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	summaryRow := len(inv.Items) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow), inv.TotalAmount)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "已付")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow+1), inv.AmountPaid)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("%s.xlsx", inv.InvoiceCode), nil
}

// PriceDrift 与来源 PO 行单价的偏离提示，不阻断操作
func (s *InvoiceService) PriceDrift(id string) ([]workflow.Violation, error) {
	inv, err := s.invRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("发票不存在: %w", err)
	}
	return s.ledgerFor(inv).PriceDrift(), nil
}

// checkAgainstPO 过账前按来源 PO 行的实时剩余量复核，
// 返回回写后的 PO 行集合
func (s *InvoiceService) checkAgainstPO(inv *entity.PurchaseInvoice) ([]entity.POItem, workflow.Outcome, error) {
	if inv.Source != workflow.SourcePO || inv.PurchaseOrderID == nil {
		return nil, workflow.Passed(), nil
	}
	po, err := s.poRepo.GetByID(*inv.PurchaseOrderID)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("来源采购订单不存在: %w", err)
	}

	poItemByID := make(map[string]*entity.POItem, len(po.Items))
	for i := range po.Items {
		poItemByID[po.Items[i].ID] = &po.Items[i]
	}

	var violations []workflow.Violation
	var updated []entity.POItem
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.POItemID == nil {
			continue
		}
		poItem, ok := poItemByID[*item.POItemID]
		if !ok {
			violations = append(violations, workflow.Violation{
				LineID:  item.ID,
				Field:   "po_item_id",
				Message: fmt.Sprintf("明细行 %s 对应的采购订单行已不存在", item.MaterialName),
			})
			continue
		}
		remaining := poItem.RemainingQty()
		if item.InvoicedQty > remaining {
			violations = append(violations, workflow.Violation{
				LineID:  item.ID,
				Field:   "invoiced_qty",
				Message: fmt.Sprintf("明细行 %s 数量 %.4f 超出剩余可用量 %.4f", item.MaterialName, item.InvoicedQty, remaining),
			})
			continue
		}
		poItem.InvoicedQty += item.InvoicedQty
		updated = append(updated, *poItem)
	}
	if len(violations) > 0 {
		return nil, workflow.Blocked(violations...), nil
	}
	return updated, workflow.Passed(), nil
}

func (s *InvoiceService) saveWithTotals(inv *entity.PurchaseInvoice) (*entity.PurchaseInvoice, workflow.Outcome, error) {
	s.applyTotals(inv)
	if err := s.invRepo.ReplaceItems(inv.ID, inv.Items); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to replace invoice items: %w", err)
	}
	if err := s.invRepo.Update(inv); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to update invoice: %w", err)
	}
	updated, err := s.invRepo.GetByID(inv.ID)
	return updated, workflow.Passed(), err
}

// ledgerFor 发票数量允许小数
func (s *InvoiceService) ledgerFor(inv *entity.PurchaseInvoice) *workflow.Ledger {
	lines := make([]workflow.Line, 0, len(inv.Items))
	for _, item := range inv.Items {
		lines = append(lines, workflow.Line{
			ID:            item.ID,
			MaterialID:    item.MaterialID,
			Description:   item.MaterialName,
			Quantity:      item.InvoicedQty,
			RemainingQty:  item.RemainingQty,
			UnitPrice:     item.UnitPrice,
			OriginalPrice: item.OriginalPrice,
			TaxRate:       item.TaxRate,
		})
	}
	return workflow.NewLedger(lines, false)
}

func (s *InvoiceService) applyTotals(inv *entity.PurchaseInvoice) {
	totals := s.ledgerFor(inv).Totals()
	inv.Subtotal = totals.Subtotal.InexactFloat64()
	inv.TaxAmount = totals.Tax.InexactFloat64()
	inv.TotalAmount = totals.Total.InexactFloat64()
}

func (s *InvoiceService) manualItem(invoiceID string, input InvoiceItemInput) entity.InvoiceItem {
	return entity.InvoiceItem{
		ID:           uuid.New().String(),
		InvoiceID:    invoiceID,
		MaterialID:   input.MaterialID,
		MaterialName: input.Description,
		Quantity:     input.Quantity,
		InvoicedQty:  input.Quantity,
		Unit:         input.Unit,
		UnitPrice:    input.UnitPrice,
		TaxRate:      input.TaxRate,
		Amount:       lineAmount(input.Quantity, input.UnitPrice),
	}
}

func (s *InvoiceService) logTransition(inv *entity.PurchaseInvoice, from, to, userID, note string) {
	s.logRepo.Create(&entity.StatusLog{
		ID:         uuid.New().String(),
		DocType:    string(workflow.DocPurchaseInvoice),
		DocID:      inv.ID,
		DocCode:    inv.InvoiceCode,
		FromStatus: from,
		ToStatus:   to,
		Actor:      userID,
		Note:       note,
	})
}
