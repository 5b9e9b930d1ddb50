package entity

import (
	"time"
)

// Attachment 单据附件，文件存 MinIO，元数据落库
type Attachment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	DocType     string    `json:"doc_type" gorm:"size:10;not null;index:idx_attachment_doc"`
	DocID       string    `json:"doc_id" gorm:"size:36;not null;index:idx_attachment_doc"`
	FileName    string    `json:"file_name" gorm:"size:256;not null"`
	ObjectName  string    `json:"object_name" gorm:"size:512;not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	ContentType string    `json:"content_type" gorm:"size:128"`
	UploadedBy  string    `json:"uploaded_by" gorm:"size:64;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "mfg_attachments"
}
