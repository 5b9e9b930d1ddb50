package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/workflow"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// AttachmentService 单据附件，文件存 MinIO，元数据入库
type AttachmentService struct {
	attachRepo  *repository.AttachmentRepository
	minioClient *minio.Client
	bucketName  string
}

func NewAttachmentService(attachRepo *repository.AttachmentRepository, minioClient *minio.Client, bucketName string) *AttachmentService {
	return &AttachmentService{attachRepo: attachRepo, minioClient: minioClient, bucketName: bucketName}
}

// Upload 上传附件并挂到单据
func (s *AttachmentService) Upload(ctx context.Context, docType, docID, userID string, reader io.Reader, fileName string, fileSize int64, contentType string) (*entity.Attachment, error) {
	if !validDocType(docType) {
		return nil, fmt.Errorf("未知的单据类型: %s", docType)
	}

	objectName := fmt.Sprintf("attachments/%s/%s/%s%s", docType, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	attachment := &entity.Attachment{
		ID:          uuid.New().String(),
		DocType:     docType,
		DocID:       docID,
		FileName:    fileName,
		ObjectName:  objectName,
		FileSize:    fileSize,
		ContentType: contentType,
		UploadedBy:  userID,
	}
	if err := s.attachRepo.Create(attachment); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return attachment, nil
}

// Download 取附件内容流，调用方负责关闭
func (s *AttachmentService) Download(ctx context.Context, id string) (io.ReadCloser, *entity.Attachment, error) {
	attachment, err := s.attachRepo.GetByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("附件不存在: %w", err)
	}
	if s.minioClient == nil {
		return nil, nil, fmt.Errorf("文件存储未配置")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, attachment.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, attachment, nil
}

// ListByDoc 单据的附件列表
func (s *AttachmentService) ListByDoc(docType, docID string) ([]entity.Attachment, error) {
	if !validDocType(docType) {
		return nil, fmt.Errorf("未知的单据类型: %s", docType)
	}
	return s.attachRepo.ListByDoc(docType, docID)
}

// Delete 删除附件记录并清理对象存储
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.attachRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("附件不存在: %w", err)
	}
	if err := s.attachRepo.Delete(id); err != nil {
		return err
	}
	if s.minioClient != nil {
		s.minioClient.RemoveObject(ctx, s.bucketName, attachment.ObjectName, minio.RemoveObjectOptions{})
	}
	return nil
}

func validDocType(docType string) bool {
	switch workflow.DocType(docType) {
	case workflow.DocManufacturingOrder, workflow.DocPurchaseOrder, workflow.DocPurchaseInvoice:
		return true
	}
	return false
}
