package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// PurchaseService 采购订单编排。
// 审批链 DRAFT → PENDING_APPROVAL → APPROVED，驳回为终态且必须给出原因
type PurchaseService struct {
	poRepo       *repository.PurchaseRepository
	supplierRepo *repository.SupplierRepository
	catalogRepo  *repository.CatalogRepository
	logRepo      *repository.StatusLogRepository
	machine      *workflow.Machine
}

func NewPurchaseService(poRepo *repository.PurchaseRepository, supplierRepo *repository.SupplierRepository, catalogRepo *repository.CatalogRepository, logRepo *repository.StatusLogRepository) *PurchaseService {
	return &PurchaseService{
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		catalogRepo:  catalogRepo,
		logRepo:      logRepo,
		machine:      workflow.MachineFor(workflow.DocPurchaseOrder),
	}
}

type POItemInput struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price" binding:"gte=0"`
	TaxRate    float64 `json:"tax_rate"`
}

type CreatePORequest struct {
	SupplierID   string        `json:"supplier_id" binding:"required"`
	OrderDate    string        `json:"order_date"`
	ExpectedDate string        `json:"expected_date"`
	Notes        string        `json:"notes"`
	Items        []POItemInput `json:"items"`
}

func (s *PurchaseService) Create(req CreatePORequest, userID string) (*entity.PurchaseOrder, error) {
	supplier, err := s.supplierRepo.GetByID(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("供应商不存在: %w", err)
	}
	if supplier.Status != entity.SupplierStatusActive {
		return nil, fmt.Errorf("供应商已停用")
	}

	po := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		POCode:       docCode("PO"),
		SupplierID:   supplier.ID,
		Status:       workflow.POStatusDraft,
		Currency:     "CNY",
		OrderDate:    parseDate(req.OrderDate),
		ExpectedDate: parseDate(req.ExpectedDate),
		Notes:        req.Notes,
		CreatedBy:    userID,
	}

	items, err := s.buildItems(po.ID, req.Items)
	if err != nil {
		return nil, err
	}
	po.Items = items
	s.applyTotals(po)

	if err := s.poRepo.Create(po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}
	return s.poRepo.GetByID(po.ID)
}

func (s *PurchaseService) GetByID(id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.GetByID(id)
}

func (s *PurchaseService) List(params repository.POListParams) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.List(params)
}

type UpdatePORequest struct {
	SupplierID   string        `json:"supplier_id" binding:"required"`
	OrderDate    string        `json:"order_date"`
	ExpectedDate string        `json:"expected_date"`
	Notes        string        `json:"notes"`
	Items        []POItemInput `json:"items"`
}

// UpdateDraft 草稿期整单替换编辑
func (s *PurchaseService) UpdateDraft(id string, req UpdatePORequest) (*entity.PurchaseOrder, workflow.Outcome, error) {
	po, err := s.poRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("采购订单不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocPurchaseOrder, po.Status, "", true)
	if !edit.CoreFields {
		return nil, workflow.BlockedMsg(fmt.Sprintf("当前状态不允许编辑: %s", po.Status)), nil
	}

	if req.SupplierID != po.SupplierID {
		supplier, err := s.supplierRepo.GetByID(req.SupplierID)
		if err != nil {
			return nil, workflow.Outcome{}, fmt.Errorf("供应商不存在: %w", err)
		}
		if supplier.Status != entity.SupplierStatusActive {
			return nil, workflow.BlockedMsg("供应商已停用"), nil
		}
		po.SupplierID = supplier.ID
	}

	items, err := s.buildItems(po.ID, req.Items)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if err := s.poRepo.ReplaceItems(po.ID, items); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to replace PO items: %w", err)
	}

	po.OrderDate = parseDate(req.OrderDate)
	po.ExpectedDate = parseDate(req.ExpectedDate)
	po.Notes = req.Notes
	po.Items = items
	s.applyTotals(po)

	if err := s.poRepo.Update(po); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to update purchase order: %w", err)
	}
	updated, err := s.poRepo.GetByID(id)
	return updated, workflow.Passed(), err
}

// Submit 提交审批。要求至少一条明细且整数数量、非负价格
func (s *PurchaseService) Submit(id, userID string) (*entity.PurchaseOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.POStatusPending, userID, "", func(po *entity.PurchaseOrder) workflow.Outcome {
		ledger := s.ledgerFor(po)
		if ledger.Len() == 0 {
			return workflow.BlockedMsg("至少需要一条采购明细")
		}
		if violations := ledger.Validate(); len(violations) > 0 {
			return workflow.Blocked(violations...)
		}
		return workflow.Passed()
	}, func(po *entity.PurchaseOrder) {
		now := time.Now()
		po.SubmittedAt = &now
	})
}

// Approve 审批通过
func (s *PurchaseService) Approve(id, userID string) (*entity.PurchaseOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.POStatusApproved, userID, "", nil, func(po *entity.PurchaseOrder) {
		now := time.Now()
		po.ApprovedBy = userID
		po.ApprovedAt = &now
	})
}

// Reject 驳回，原因必填，驳回后订单终结
func (s *PurchaseService) Reject(id, userID, reason string) (*entity.PurchaseOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.POStatusRejected, userID, reason, func(po *entity.PurchaseOrder) workflow.Outcome {
		if reason == "" {
			return workflow.BlockedMsg("驳回原因不能为空")
		}
		return workflow.Passed()
	}, func(po *entity.PurchaseOrder) {
		po.RejectReason = reason
	})
}

// Cancel 取消，仅草稿可取消
func (s *PurchaseService) Cancel(id, userID string) (*entity.PurchaseOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.POStatusCancelled, userID, "", nil, nil)
}

// Editability 表单可编辑策略
func (s *PurchaseService) Editability(id string, editMode bool) (workflow.Editability, []string, error) {
	po, err := s.poRepo.GetByID(id)
	if err != nil {
		return workflow.Editability{}, nil, fmt.Errorf("采购订单不存在: %w", err)
	}
	return workflow.EditabilityFor(workflow.DocPurchaseOrder, po.Status, "", editMode),
		s.machine.AllowedTransitions(po.Status), nil
}

// History 状态流转记录
func (s *PurchaseService) History(id string) ([]entity.StatusLog, error) {
	return s.logRepo.ListByDoc(string(workflow.DocPurchaseOrder), id)
}

// ExportXLSX 导出采购订单明细
func (s *PurchaseService) ExportXLSX(id string) ([]byte, string, error) {
	po, err := s.poRepo.GetByID(id)
	if err != nil {
		return nil, "", fmt.Errorf("采购订单不存在: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headers := []string{"物料编码", "物料名称", "数量", "单位", "单价", "税率(%)", "金额"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, item := range po.Items {
		values := []interface{}{item.MaterialCode, item.MaterialName, item.Quantity, item.Unit, item.UnitPrice, item.TaxRate, item.Amount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	summaryRow := len(po.Items) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow), po.TotalAmount)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("%s.xlsx", po.POCode), nil
}

func (s *PurchaseService) transition(id, to, userID, note string, guard func(*entity.PurchaseOrder) workflow.Outcome, apply func(*entity.PurchaseOrder)) (*entity.PurchaseOrder, workflow.Outcome, error) {
	po, err := s.poRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("采购订单不存在: %w", err)
	}
	if !s.machine.CanTransition(po.Status, to) {
		return nil, workflow.BlockedMsg(fmt.Sprintf("状态 %s 不允许迁移到 %s", po.Status, to)), nil
	}
	if guard != nil {
		if outcome := guard(po); !outcome.OK {
			return nil, outcome, nil
		}
	}

	from := po.Status
	po.Status = to
	if apply != nil {
		apply(po)
	}
	if err := s.poRepo.Update(po); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to save purchase order: %w", err)
	}

	s.logRepo.Create(&entity.StatusLog{
		ID:         uuid.New().String(),
		DocType:    string(workflow.DocPurchaseOrder),
		DocID:      po.ID,
		DocCode:    po.POCode,
		FromStatus: from,
		ToStatus:   to,
		Actor:      userID,
		Note:       note,
	})

	return po, workflow.Passed(), nil
}

// ledgerFor 采购数量必须为整数
func (s *PurchaseService) ledgerFor(po *entity.PurchaseOrder) *workflow.Ledger {
	lines := make([]workflow.Line, 0, len(po.Items))
	for _, item := range po.Items {
		lines = append(lines, workflow.Line{
			ID:          item.ID,
			MaterialID:  item.MaterialID,
			Description: item.MaterialName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	return workflow.NewLedger(lines, true)
}

func (s *PurchaseService) applyTotals(po *entity.PurchaseOrder) {
	totals := s.ledgerFor(po).Totals()
	po.Subtotal = totals.Subtotal.InexactFloat64()
	po.TaxAmount = totals.Tax.InexactFloat64()
	po.TotalAmount = totals.Total.InexactFloat64()
}

func (s *PurchaseService) buildItems(poID string, inputs []POItemInput) ([]entity.POItem, error) {
	var items []entity.POItem
	for _, input := range inputs {
		mat, err := s.catalogRepo.GetMaterialByID(input.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("物料不存在: %s", input.MaterialID)
		}
		unit := input.Unit
		if unit == "" {
			unit = mat.Unit
		}
		amount := lineAmount(input.Quantity, input.UnitPrice)
		items = append(items, entity.POItem{
			ID:           uuid.New().String(),
			POID:         poID,
			MaterialID:   mat.ID,
			MaterialCode: mat.Code,
			MaterialName: mat.Name,
			Quantity:     input.Quantity,
			Unit:         unit,
			UnitPrice:    input.UnitPrice,
			TaxRate:      input.TaxRate,
			Amount:       amount,
		})
	}
	return items, nil
}
