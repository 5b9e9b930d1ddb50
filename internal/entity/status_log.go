package entity

import (
	"time"
)

// StatusLog 单据状态流转记录，每次提交成功的迁移追加一条
type StatusLog struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	DocType    string    `json:"doc_type" gorm:"size:10;not null;index:idx_status_log_doc"`
	DocID      string    `json:"doc_id" gorm:"size:36;not null;index:idx_status_log_doc"`
	DocCode    string    `json:"doc_code" gorm:"size:50"`
	FromStatus string    `json:"from_status" gorm:"size:20;not null"`
	ToStatus   string    `json:"to_status" gorm:"size:20;not null"`
	Actor      string    `json:"actor" gorm:"size:64"`
	Note       string    `json:"note" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StatusLog) TableName() string {
	return "mfg_status_logs"
}
