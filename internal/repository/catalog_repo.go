package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// --- Material ---

func (r *CatalogRepository) CreateMaterial(m *entity.Material) error {
	return r.db.Create(m).Error
}

func (r *CatalogRepository) GetMaterialByID(id string) (*entity.Material, error) {
	var m entity.Material
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&m).Error
	return &m, err
}

func (r *CatalogRepository) UpdateMaterial(m *entity.Material) error {
	return r.db.Save(m).Error
}

func (r *CatalogRepository) DeleteMaterial(id string) error {
	return r.db.Model(&entity.Material{}).Where("id = ?", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

type MaterialListParams struct {
	Category string
	Status   string
	Keyword  string
	Page     int
	Size     int
}

func (r *CatalogRepository) ListMaterials(params MaterialListParams) ([]entity.Material, int64, error) {
	query := r.db.Model(&entity.Material{}).Where("deleted_at IS NULL")
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var materials []entity.Material
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&materials).Error
	return materials, total, err
}

// --- Unit of Measure ---

func (r *CatalogRepository) CreateUnit(u *entity.UnitOfMeasure) error {
	return r.db.Create(u).Error
}

func (r *CatalogRepository) ListUnits() ([]entity.UnitOfMeasure, error) {
	var units []entity.UnitOfMeasure
	err := r.db.Order("code").Find(&units).Error
	return units, err
}

// --- Work Center ---

func (r *CatalogRepository) CreateWorkCenter(wc *entity.WorkCenter) error {
	return r.db.Create(wc).Error
}

func (r *CatalogRepository) GetWorkCenterByID(id string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&wc).Error
	return &wc, err
}

func (r *CatalogRepository) ListWorkCenters() ([]entity.WorkCenter, error) {
	var centers []entity.WorkCenter
	err := r.db.Where("deleted_at IS NULL").Order("code").Find(&centers).Error
	return centers, err
}
