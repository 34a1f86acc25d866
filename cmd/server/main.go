package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	customerapp "github.com/billing/backend/internal/application/customer"
	identityapp "github.com/billing/backend/internal/application/identity"
	invoiceapp "github.com/billing/backend/internal/application/invoice"
	settingsapp "github.com/billing/backend/internal/application/settings"
	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/export"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/migration"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/printing"
	"github.com/billing/backend/internal/infrastructure/storage"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/billing/backend/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/billing/backend/docs"
)

//	@title			Billing API
//	@version		1.0
//	@description	Customers, invoices with line items, company settings and JWT authentication.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	otel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otel.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = otel.BridgeLogger(log, lvl)
	}

	log.Info("Starting Billing API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDatabase(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database instrumentation unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.MigrateOnStart {
		if err := migrateSchema(db, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Token blacklist: Redis when configured, process memory otherwise
	var blacklist auth.TokenBlacklist
	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisBlacklist.Close()
		}()
		blacklist = redisBlacklist
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: redisBlacklist.Ping})
		log.Info("Token blacklist backed by Redis")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, token blacklist is kept in memory")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	itemRepo := persistence.NewGormInvoiceItemRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Optional collaborators
	var (
		objectStorage settingsapp.ObjectStorage
		logos         invoiceapp.LogoLocator
		renderer      invoiceapp.PDFRenderer
	)
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3Storage(ctx, &cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Could not verify storage bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		objectStorage, logos = s3Storage, s3Storage
	}
	if cfg.Printing.Enabled {
		engine, err := printing.NewTemplateEngine()
		if err != nil {
			log.Fatal("Failed to load invoice template", zap.Error(err))
		}
		chrome, err := printing.NewChromedpRenderer(cfg.Printing, engine, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			_ = chrome.Close()
		}()
		renderer = chrome
	}

	// Application services
	invoiceCfg := invoiceapp.Config{
		RecentLimit:      cfg.Invoice.RecentLimit,
		TopCustomerLimit: cfg.Invoice.TopCustomerLimit,
		ExportMaxRows:    cfg.Invoice.ExportMaxRows,
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	customerService := customerapp.NewCustomerService(customerRepo, invoiceRepo, log)
	invoiceService := invoiceapp.NewInvoiceService(txScope, invoiceRepo, itemRepo, customerRepo, settingsRepo, invoiceCfg, log)
	invoiceMetrics, err := otel.InvoiceMetrics()
	if err != nil {
		log.Warn("Invoice metrics unavailable", zap.Error(err))
	} else if invoiceMetrics != nil {
		invoiceService.SetMetrics(invoiceMetrics)
	}
	documentService := invoiceapp.NewDocumentService(invoiceRepo, customerRepo, settingsRepo,
		renderer, export.NewInvoiceWorkbook(), logos, invoiceCfg, log)
	settingsService := settingsapp.NewSettingsService(settingsRepo, objectStorage, cfg.Storage.MaxLogoSize, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Options{
		Logger:        log,
		HTTP:          cfg.HTTP,
		Authenticator: authService,
		Telemetry:     otel.GinMiddlewares(log),
		Swagger:       cfg.Swagger.Enabled,
	}, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, documentService),
		Settings: handler.NewSettingsHandler(settingsService),
		System:   handler.NewSystemHandler(cfg.App.Name, version, checks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded migrations over the server's own pool
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool
	return m.Up()
}
