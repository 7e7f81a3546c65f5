package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/config"
	crmentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/entity"
	crmhandler "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/handler"
	crmrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/repository"
	crmsvc "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/middleware"
	procentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/entity"
	prochandler "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/handler"
	procrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/repository"
	procsvc "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/service"
	prodentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/entity"
	prodhandler "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/handler"
	prodrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/repository"
	prodsvc "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/service"
	salesentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
	saleshandler "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/handler"
	salesrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/repository"
	salessvc "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/settings"
	whentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/entity"
	whhandler "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/handler"
	whrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/repository"
	whsvc "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type handlers struct {
	Settings    *settings.Handler
	Quote       *crmhandler.QuoteHandler
	Order       *saleshandler.OrderHandler
	Procurement *prochandler.ProcurementHandler
	Supplier    *prochandler.SupplierHandler
	Warehouse   *whhandler.WarehouseHandler
	Production  *prodhandler.ProductionHandler
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting quan-ly-xsxdtt service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&settings.SystemSetting{},
		&crmentity.Quote{},
		&crmentity.QuoteItem{},
		&salesentity.Order{},
		&salesentity.OrderItem{},
		&procentity.Supplier{},
		&procentity.PurchaseRequest{},
		&procentity.PurchaseOrder{},
		&procentity.POItem{},
		&whentity.Material{},
		&whentity.MaterialReceipt{},
		&whentity.ReceiptItem{},
		&whentity.InventoryLog{},
		&prodentity.ProductionPlan{},
		&prodentity.ProductionStage{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	settingsSvc := settings.NewService(settings.NewRepository(db), rdb, zapLogger)

	crmRepos := crmrepo.NewRepositories(db)
	quoteSvc := crmsvc.NewQuoteService(crmRepos.Quote, settingsSvc, zapLogger)

	salesRepos := salesrepo.NewRepositories(db)
	orderSvc := salessvc.NewOrderService(salesRepos.Order, db, zapLogger)

	procRepos := procrepo.NewRepositories(db)
	procurementSvc := procsvc.NewProcurementService(procRepos, db, zapLogger)
	orderSvc.SetProcurementGenerator(procurementSvc)

	whRepos := whrepo.NewRepositories(db)
	warehouseSvc := whsvc.NewWarehouseService(db, whRepos, zapLogger)

	planRepo := prodrepo.NewPlanRepository(db)
	productionSvc := prodsvc.NewProductionService(db, planRepo, zapLogger)

	h := &handlers{
		Settings:    settings.NewHandler(settingsSvc),
		Quote:       crmhandler.NewQuoteHandler(quoteSvc),
		Order:       saleshandler.NewOrderHandler(orderSvc),
		Procurement: prochandler.NewProcurementHandler(procurementSvc),
		Supplier:    prochandler.NewSupplierHandler(procurementSvc),
		Warehouse:   whhandler.NewWarehouseHandler(warehouseSvc),
		Production:  prodhandler.NewProductionHandler(productionSvc),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, h, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey;
	// the code-generation retry loops depend on it.
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
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

func registerRoutes(r *gin.Engine, h *handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// System settings
		st := authorized.Group("/settings")
		{
			st.GET("/approval-threshold", h.Settings.GetApprovalThreshold)
			st.POST("/approval-threshold", middleware.RequireRole("MANAGER"), h.Settings.SetApprovalThreshold)
			st.GET("/:key", h.Settings.GetSetting)
		}

		// CRM quotes
		quotes := authorized.Group("/crm/quotes")
		{
			quotes.GET("", h.Quote.List)
			quotes.POST("", h.Quote.Create)
			quotes.GET("/:id", h.Quote.Get)
			quotes.POST("/:id/approve", middleware.RequireRole("MANAGER"), h.Quote.Decide)
			quotes.PUT("/:id/items", h.Quote.UpdateItems)
			quotes.POST("/:id/convert", h.Order.Convert)
		}

		// Sales orders
		orders := authorized.Group("/sales/orders")
		{
			orders.GET("", h.Order.List)
			orders.POST("", h.Order.Create)
			orders.GET("/:id", h.Order.Get)
			orders.PUT("/:id/item-notes", h.Order.UpdateItemNotes)
		}

		// Procurement
		proc := authorized.Group("/procurement")
		{
			proc.GET("/requests", h.Procurement.ListRequests)
			proc.POST("/requests/generate", h.Procurement.GenerateRequests)
			proc.GET("/purchase-orders", h.Procurement.ListPOs)
			proc.POST("/purchase-orders", h.Procurement.CreatePO)
			proc.GET("/purchase-orders/:id", h.Procurement.GetPO)
			proc.PUT("/purchase-orders/:id/items/:itemId/price", h.Procurement.SetItemPrice)

			proc.GET("/suppliers", h.Supplier.List)
			proc.POST("/suppliers", h.Supplier.Create)
			proc.PUT("/suppliers/:id", h.Supplier.Update)
		}

		// Warehouse
		wh := authorized.Group("/warehouse")
		{
			wh.GET("/materials", h.Warehouse.ListMaterials)
			wh.POST("/materials", h.Warehouse.CreateMaterial)
			wh.GET("/materials/low-stock", h.Warehouse.LowStock)
			wh.GET("/materials/:id", h.Warehouse.GetMaterial)
			wh.GET("/materials/:id/logs", h.Warehouse.ListLogs)
			wh.POST("/materials/:id/export", h.Warehouse.Export)

			wh.GET("/receipts", h.Warehouse.ListReceipts)
			wh.POST("/receipts", h.Warehouse.CreateReceipt)
			wh.GET("/receipts/:id", h.Warehouse.GetReceipt)
		}

		// Production
		prod := authorized.Group("/production")
		{
			prod.GET("/plans", h.Production.List)
			prod.POST("/plans", h.Production.Create)
			prod.GET("/plans/:id", h.Production.Get)
			prod.PATCH("/stages/:id", h.Production.UpdateStage)
		}
	}
}
