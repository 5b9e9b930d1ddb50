package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-mfg/internal/config"
	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/handler"
	"github.com/bitfantasy/nimo-mfg/internal/middleware"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-mfg service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化MinIO
	minioClient, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO unavailable, attachments disabled", zap.Error(err))
	}

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, minioClient, cfg.MinIO.Bucket)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 物料管理
		materials := authorized.Group("/materials")
		{
			materials.GET("", h.Catalog.ListMaterials)
			materials.POST("", h.Catalog.CreateMaterial)
			materials.GET("/:id", h.Catalog.GetMaterial)
			materials.PUT("/:id", h.Catalog.UpdateMaterial)
			materials.DELETE("/:id", middleware.RequireRole("mfg_manager"), h.Catalog.DeleteMaterial)
		}

		// 计量单位
		authorized.GET("/units", h.Catalog.ListUnits)
		authorized.POST("/units", h.Catalog.CreateUnit)

		// 工作中心
		authorized.GET("/work-centers", h.Catalog.ListWorkCenters)
		authorized.POST("/work-centers", h.Catalog.CreateWorkCenter)

		// 选择器
		authorized.GET("/options/:kind", h.Catalog.Options)

		// 供应商管理
		suppliers := authorized.Group("/suppliers")
		{
			suppliers.GET("", h.Supplier.List)
			suppliers.POST("", h.Supplier.Create)
			suppliers.GET("/:id", h.Supplier.Get)
			suppliers.PUT("/:id", h.Supplier.Update)
			suppliers.DELETE("/:id", middleware.RequireRole("mfg_manager"), h.Supplier.Delete)
		}

		// BOM管理
		boms := authorized.Group("/boms")
		{
			boms.GET("", h.BOM.List)
			boms.POST("", h.BOM.Create)
			boms.GET("/:id", h.BOM.Get)
			boms.PUT("/:id", h.BOM.Update)
			boms.DELETE("/:id", middleware.RequireRole("mfg_manager"), h.BOM.Delete)
			boms.POST("/:id/release", h.BOM.Release)
		}

		// 生产订单
		mos := authorized.Group("/manufacturing-orders")
		{
			mos.GET("", h.Manufacturing.List)
			mos.POST("", h.Manufacturing.Create)
			mos.GET("/:id", h.Manufacturing.Get)
			mos.PUT("/:id", h.Manufacturing.Update)
			mos.POST("/:id/confirm", h.Manufacturing.Confirm)
			mos.POST("/:id/start", h.Manufacturing.Start)
			mos.POST("/:id/pause", h.Manufacturing.Pause)
			mos.POST("/:id/resume", h.Manufacturing.Resume)
			mos.POST("/:id/finish", h.Manufacturing.Finish)
			mos.POST("/:id/cancel", h.Manufacturing.Cancel)
			mos.GET("/:id/editability", h.Manufacturing.Editability)
			mos.GET("/:id/history", h.Manufacturing.History)
		}

		// 采购订单
		pos := authorized.Group("/purchase-orders")
		{
			pos.GET("", h.Purchase.List)
			pos.POST("", h.Purchase.Create)
			pos.GET("/:id", h.Purchase.Get)
			pos.PUT("/:id", h.Purchase.Update)
			pos.POST("/:id/submit", h.Purchase.Submit)
			pos.POST("/:id/approve", middleware.RequirePermission("po:approve"), h.Purchase.Approve)
			pos.POST("/:id/reject", middleware.RequirePermission("po:approve"), h.Purchase.Reject)
			pos.POST("/:id/cancel", h.Purchase.Cancel)
			pos.GET("/:id/editability", h.Purchase.Editability)
			pos.GET("/:id/history", h.Purchase.History)
			pos.GET("/:id/export", h.Purchase.Export)
		}

		// 采购发票
		invoices := authorized.Group("/purchase-invoices")
		{
			invoices.GET("", h.Invoice.List)
			invoices.POST("", h.Invoice.Create)
			invoices.POST("/from-po", h.Invoice.CreateFromPO)
			invoices.GET("/:id", h.Invoice.Get)
			invoices.PUT("/:id", h.Invoice.UpdateHeader)
			invoices.POST("/:id/lines", h.Invoice.AddLine)
			invoices.PUT("/:id/lines/:lineId", h.Invoice.UpdateLine)
			invoices.DELETE("/:id/lines/:lineId", h.Invoice.RemoveLine)
			invoices.POST("/:id/post", h.Invoice.Post)
			invoices.POST("/:id/cancel", h.Invoice.Cancel)
			invoices.POST("/:id/payments", h.Invoice.RecordPayment)
			invoices.GET("/:id/editability", h.Invoice.Editability)
			invoices.GET("/:id/history", h.Invoice.History)
			invoices.GET("/:id/price-drift", h.Invoice.PriceDrift)
			invoices.GET("/:id/export", h.Invoice.Export)
		}

		// 附件
		authorized.POST("/docs/:docType/:docId/attachments", h.Attachment.Upload)
		authorized.GET("/docs/:docType/:docId/attachments", h.Attachment.List)
		authorized.GET("/attachments/:id/download", h.Attachment.Download)
		authorized.DELETE("/attachments/:id", h.Attachment.Delete)
	}
}
