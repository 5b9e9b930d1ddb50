package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
)

// ManufacturingService 生产订单编排：组合明细账与状态机，
// 迁移先校验后落库，校验失败返回 Outcome，单据不变
type ManufacturingService struct {
	moRepo      *repository.ManufacturingRepository
	bomRepo     *repository.BOMRepository
	catalogRepo *repository.CatalogRepository
	logRepo     *repository.StatusLogRepository
	machine     *workflow.Machine
}

func NewManufacturingService(moRepo *repository.ManufacturingRepository, bomRepo *repository.BOMRepository, catalogRepo *repository.CatalogRepository, logRepo *repository.StatusLogRepository) *ManufacturingService {
	return &ManufacturingService{
		moRepo:      moRepo,
		bomRepo:     bomRepo,
		catalogRepo: catalogRepo,
		logRepo:     logRepo,
		machine:     workflow.MachineFor(workflow.DocManufacturingOrder),
	}
}

type MOMaterialInput struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price"`
	TaxRate    float64 `json:"tax_rate"`
}

type CreateMORequest struct {
	ProductID    string            `json:"product_id" binding:"required"`
	BOMID        string            `json:"bom_id"`
	WorkCenterID string            `json:"work_center_id"`
	PlannedQty   float64           `json:"planned_qty" binding:"required,gt=0"`
	PlannedStart string            `json:"planned_start"` // YYYY-MM-DD
	PlannedEnd   string            `json:"planned_end"`
	Notes        string            `json:"notes"`
	Materials    []MOMaterialInput `json:"materials"`
}

// Create 创建生产订单。指定BOM时物料明细按BOM展开，否则取请求明细
func (s *ManufacturingService) Create(req CreateMORequest, userID string) (*entity.ManufacturingOrder, error) {
	product, err := s.catalogRepo.GetMaterialByID(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if req.WorkCenterID != "" {
		if _, err := s.catalogRepo.GetWorkCenterByID(req.WorkCenterID); err != nil {
			return nil, fmt.Errorf("工作中心不存在: %w", err)
		}
	}

	mo := &entity.ManufacturingOrder{
		ID:           uuid.New().String(),
		MOCode:       docCode("MO"),
		ProductID:    product.ID,
		ProductCode:  product.Code,
		ProductName:  product.Name,
		WorkCenterID: req.WorkCenterID,
		PlannedQty:   req.PlannedQty,
		Status:       workflow.MOStatusDraft,
		SourceType:   workflow.SourceManual,
		PlannedStart: parseDate(req.PlannedStart),
		PlannedEnd:   parseDate(req.PlannedEnd),
		Notes:        req.Notes,
		CreatedBy:    userID,
	}

	if req.BOMID != "" {
		bom, err := s.bomRepo.GetByID(req.BOMID)
		if err != nil {
			return nil, fmt.Errorf("BOM不存在: %w", err)
		}
		if bom.Status != entity.BOMStatusReleased {
			return nil, fmt.Errorf("只有已发布的BOM可以下达生产订单")
		}
		mo.BOMID = &bom.ID
		mo.SourceType = "BOM"
		for _, item := range bom.Items {
			mo.Materials = append(mo.Materials, entity.MOMaterial{
				ID:           uuid.New().String(),
				OrderID:      mo.ID,
				MaterialID:   item.MaterialID,
				MaterialCode: item.MaterialCode,
				MaterialName: item.MaterialName,
				Quantity:     item.Quantity * req.PlannedQty,
				Unit:         item.Unit,
				UnitPrice:    item.UnitCost,
			})
		}
	} else {
		materials, err := s.buildMaterials(mo.ID, req.Materials)
		if err != nil {
			return nil, err
		}
		mo.Materials = materials
	}

	s.applyTotals(mo)

	if err := s.moRepo.Create(mo); err != nil {
		return nil, fmt.Errorf("failed to create manufacturing order: %w", err)
	}
	return mo, nil
}

func (s *ManufacturingService) GetByID(id string) (*entity.ManufacturingOrder, error) {
	mo, err := s.moRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	mo.ElapsedSecs = mo.ElapsedSeconds(time.Now())
	return mo, nil
}

func (s *ManufacturingService) List(params repository.MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	return s.moRepo.List(params)
}

type UpdateMORequest struct {
	WorkCenterID string            `json:"work_center_id"`
	PlannedQty   float64           `json:"planned_qty" binding:"required,gt=0"`
	PlannedStart string            `json:"planned_start"`
	PlannedEnd   string            `json:"planned_end"`
	Notes        string            `json:"notes"`
	Materials    []MOMaterialInput `json:"materials"`
}

// UpdateDraft 草稿期编辑头字段与物料明细
func (s *ManufacturingService) UpdateDraft(id string, req UpdateMORequest) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	mo, err := s.moRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("生产订单不存在: %w", err)
	}
	edit := workflow.EditabilityFor(workflow.DocManufacturingOrder, mo.Status, "", true)
	if !edit.CoreFields {
		return nil, workflow.BlockedMsg(fmt.Sprintf("当前状态不允许编辑: %s", mo.Status)), nil
	}

	materials, err := s.buildMaterials(mo.ID, req.Materials)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if err := s.moRepo.ReplaceMaterials(mo.ID, materials); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to replace materials: %w", err)
	}

	mo.WorkCenterID = req.WorkCenterID
	mo.PlannedQty = req.PlannedQty
	mo.PlannedStart = parseDate(req.PlannedStart)
	mo.PlannedEnd = parseDate(req.PlannedEnd)
	mo.Notes = req.Notes
	mo.Materials = materials
	s.applyTotals(mo)

	if err := s.moRepo.Update(mo); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to update manufacturing order: %w", err)
	}
	updated, err := s.moRepo.GetByID(id)
	return updated, workflow.Passed(), err
}

// Confirm 确认订单。要求至少一条物料明细且全部通过校验
func (s *ManufacturingService) Confirm(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusConfirmed, userID, func(mo *entity.ManufacturingOrder) workflow.Outcome {
		ledger := s.ledgerFor(mo)
		if ledger.Len() == 0 {
			return workflow.BlockedMsg("至少需要一条物料明细")
		}
		if violations := ledger.Validate(); len(violations) > 0 {
			return workflow.Blocked(violations...)
		}
		return workflow.Passed()
	}, nil)
}

// Start 开工，开始计时
func (s *ManufacturingService) Start(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusInProgress, userID, nil, func(mo *entity.ManufacturingOrder) {
		now := time.Now()
		mo.ActualStart = &now
	})
}

// Pause 暂停，记录暂停起点
func (s *ManufacturingService) Pause(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusPaused, userID, nil, func(mo *entity.ManufacturingOrder) {
		now := time.Now()
		mo.PausedAt = &now
	})
}

// Resume 恢复，累计暂停时长
func (s *ManufacturingService) Resume(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusInProgress, userID, nil, func(mo *entity.ManufacturingOrder) {
		if mo.PausedAt != nil {
			mo.PausedSecs += int64(time.Since(*mo.PausedAt).Seconds())
			mo.PausedAt = nil
		}
	})
}

// Finish 完工
func (s *ManufacturingService) Finish(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusDone, userID, nil, func(mo *entity.ManufacturingOrder) {
		now := time.Now()
		mo.ActualEnd = &now
	})
}

// Cancel 取消，任何非终态可调用
func (s *ManufacturingService) Cancel(id, userID string) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	return s.transition(id, workflow.MOStatusCancelled, userID, nil, nil)
}

// Editability 表单可编辑策略
func (s *ManufacturingService) Editability(id string, editMode bool) (workflow.Editability, []string, error) {
	mo, err := s.moRepo.GetByID(id)
	if err != nil {
		return workflow.Editability{}, nil, fmt.Errorf("生产订单不存在: %w", err)
	}
	return workflow.EditabilityFor(workflow.DocManufacturingOrder, mo.Status, "", editMode),
		s.machine.AllowedTransitions(mo.Status), nil
}

// History 状态流转记录
func (s *ManufacturingService) History(id string) ([]entity.StatusLog, error) {
	return s.logRepo.ListByDoc(string(workflow.DocManufacturingOrder), id)
}

// transition 通用迁移：状态机判定 → 业务守卫 → 变更 → 落库 → 流转记录
func (s *ManufacturingService) transition(id, to, userID string, guard func(*entity.ManufacturingOrder) workflow.Outcome, apply func(*entity.ManufacturingOrder)) (*entity.ManufacturingOrder, workflow.Outcome, error) {
	mo, err := s.moRepo.GetByID(id)
	if err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("生产订单不存在: %w", err)
	}
	if !s.machine.CanTransition(mo.Status, to) {
		return nil, workflow.BlockedMsg(fmt.Sprintf("状态 %s 不允许迁移到 %s", mo.Status, to)), nil
	}
	if guard != nil {
		if outcome := guard(mo); !outcome.OK {
			return nil, outcome, nil
		}
	}

	from := mo.Status
	mo.Status = to
	if apply != nil {
		apply(mo)
	}
	if err := s.moRepo.Update(mo); err != nil {
		return nil, workflow.Outcome{}, fmt.Errorf("failed to save manufacturing order: %w", err)
	}

	s.logRepo.Create(&entity.StatusLog{
		ID:         uuid.New().String(),
		DocType:    string(workflow.DocManufacturingOrder),
		DocID:      mo.ID,
		DocCode:    mo.MOCode,
		FromStatus: from,
		ToStatus:   to,
		Actor:      userID,
	})

	return mo, workflow.Passed(), nil
}

func (s *ManufacturingService) ledgerFor(mo *entity.ManufacturingOrder) *workflow.Ledger {
	lines := make([]workflow.Line, 0, len(mo.Materials))
	for _, m := range mo.Materials {
		lines = append(lines, workflow.Line{
			ID:          m.ID,
			MaterialID:  m.MaterialID,
			Description: m.MaterialName,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			TaxRate:     m.TaxRate,
		})
	}
	return workflow.NewLedger(lines, false)
}

func (s *ManufacturingService) applyTotals(mo *entity.ManufacturingOrder) {
	totals := s.ledgerFor(mo).Totals()
	mo.MaterialCost = totals.Subtotal.InexactFloat64()
	mo.TaxAmount = totals.Tax.InexactFloat64()
	mo.TotalCost = totals.Total.InexactFloat64()
}

func (s *ManufacturingService) buildMaterials(orderID string, inputs []MOMaterialInput) ([]entity.MOMaterial, error) {
	var materials []entity.MOMaterial
	for _, input := range inputs {
		mat, err := s.catalogRepo.GetMaterialByID(input.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("物料不存在: %s", input.MaterialID)
		}
		unit := input.Unit
		if unit == "" {
			unit = mat.Unit
		}
		unitPrice := input.UnitPrice
		if unitPrice == 0 {
			unitPrice = mat.StandardCost
		}
		materials = append(materials, entity.MOMaterial{
			ID:           uuid.New().String(),
			OrderID:      orderID,
			MaterialID:   mat.ID,
			MaterialCode: mat.Code,
			MaterialName: mat.Name,
			Quantity:     input.Quantity,
			Unit:         unit,
			UnitPrice:    unitPrice,
			TaxRate:      input.TaxRate,
		})
	}
	return materials, nil
}
