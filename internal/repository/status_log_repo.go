package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type StatusLogRepository struct {
	db *gorm.DB
}

func NewStatusLogRepository(db *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

func (r *StatusLogRepository) Create(log *entity.StatusLog) error {
	return r.db.Create(log).Error
}

func (r *StatusLogRepository) ListByDoc(docType, docID string) ([]entity.StatusLog, error) {
	var logs []entity.StatusLog
	err := r.db.Where("doc_type = ? AND doc_id = ?", docType, docID).
		Order("created_at DESC").Find(&logs).Error
	return logs, err
}
