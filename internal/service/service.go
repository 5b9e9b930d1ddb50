package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Services 服务集合
type Services struct {
	Catalog       *CatalogService
	Supplier      *SupplierService
	BOM           *BOMService
	Manufacturing *ManufacturingService
	Purchase      *PurchaseService
	Invoice       *InvoiceService
	Attachment    *AttachmentService
}

func NewServices(repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, bucket string) *Services {
	catalog := NewCatalogService(repos.Catalog, repos.Supplier, rdb)
	return &Services{
		Catalog:       catalog,
		Supplier:      NewSupplierService(repos.Supplier, catalog),
		BOM:           NewBOMService(repos.BOM, repos.Catalog),
		Manufacturing: NewManufacturingService(repos.Manufacturing, repos.BOM, repos.Catalog, repos.StatusLog),
		Purchase:      NewPurchaseService(repos.Purchase, repos.Supplier, repos.Catalog, repos.StatusLog),
		Invoice:       NewInvoiceService(repos.Invoice, repos.Purchase, repos.Supplier, repos.StatusLog),
		Attachment:    NewAttachmentService(repos.Attachment, minioClient, bucket),
	}
}

// docCode 生成单据编号，如 PO-202608314321
func docCode(prefix string) string {
	now := time.Now()
	return fmt.Sprintf("%s-%s%04d", prefix, now.Format("20060102"), now.UnixNano()%10000)
}

// lineAmount 明细行金额，四舍五入到分
func lineAmount(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).Round(2).InexactFloat64()
}

// parseDate 解析 YYYY-MM-DD，空串或格式错误返回 nil
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
