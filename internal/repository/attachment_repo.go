package repository

import (
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(a *entity.Attachment) error {
	return r.db.Create(a).Error
}

func (r *AttachmentRepository) GetByID(id string) (*entity.Attachment, error) {
	var a entity.Attachment
	err := r.db.Where("id = ?", id).First(&a).Error
	return &a, err
}

func (r *AttachmentRepository) ListByDoc(docType, docID string) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.Where("doc_type = ? AND doc_id = ?", docType, docID).
		Order("created_at DESC").Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.Attachment{}).Error
}
