package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/medrent/backend/internal/application/catalog"
	clinicalapp "github.com/medrent/backend/internal/application/clinical"
	filesapp "github.com/medrent/backend/internal/application/files"
	financeapp "github.com/medrent/backend/internal/application/finance"
	identityapp "github.com/medrent/backend/internal/application/identity"
	importapp "github.com/medrent/backend/internal/application/import"
	inventoryapp "github.com/medrent/backend/internal/application/inventory"
	partnerapp "github.com/medrent/backend/internal/application/partner"
	reportapp "github.com/medrent/backend/internal/application/report"
	tradeapp "github.com/medrent/backend/internal/application/trade"
	workflowapp "github.com/medrent/backend/internal/application/workflow"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"github.com/medrent/backend/internal/infrastructure/cache"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/medrent/backend/internal/infrastructure/event"
	"github.com/medrent/backend/internal/infrastructure/logger"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/internal/infrastructure/printing"
	"github.com/medrent/backend/internal/infrastructure/scheduler"
	"github.com/medrent/backend/internal/infrastructure/storage"
	"github.com/medrent/backend/internal/infrastructure/telemetry"
	"github.com/medrent/backend/internal/interfaces/http/handler"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
	"github.com/medrent/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/medrent/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			MedRent API
//	@version		1.0
//	@description	Medical equipment rental and sales backend: patients, devices, stock, rentals, CNAM dossiers and follow-up.

//	@contact.name	MedRent Support
//	@contact.email	support@medrent.tn

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	otelProviders, err := telemetry.Setup(context.Background(), cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = otelProviders.WithLogExport(log)

	profiler, err := telemetry.StartProfiler(cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	log.Info("Starting MedRent backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.SQLLevel),
		logger.WithSlowThreshold(cfg.Database.SlowQuery),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.Name, cfg.Telemetry.DBLogFullSQL); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}

	backends, err := cache.NewBackends(cfg.Redis, cfg.App.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = backends.Close() }()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backends.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(backends.Client)
	}

	objects, err := newObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	repos := persistence.NewRepositories(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	codes := persistence.NewGormCodeGenerator(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	patientRepo := persistence.NewGormPatientRepository(db.DB)
	rentalRepo := persistence.NewGormRentalRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	deviceRepo := persistence.NewGormMedicalDeviceRepository(db.DB)
	locationRepo := persistence.NewGormStockLocationRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Domain events feed the notification inbox
	eventBus := event.NewInMemoryEventBus(log)
	notificationEvents := event.NewIdempotentHandler(
		workflowapp.NewNotificationEventHandler(notificationRepo, userRepo, log),
		backends.Idempotency,
		log,
	)
	eventBus.Subscribe(notificationEvents, notificationEvents.EventTypes()...)
	if otelProviders.Enabled() {
		eventMetrics, err := telemetry.NewDomainEventMetrics(otelProviders.Metrics)
		if err != nil {
			log.Fatal("Failed to create event metrics", zap.Error(err))
		}
		eventBus.Subscribe(eventMetrics)
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)
	patientService := partnerapp.NewPatientService(patientRepo,
		persistence.NewGormPatientHistoryRepository(db.DB), rentalRepo, saleRepo, codes, log)
	companyService := partnerapp.NewCompanyService(persistence.NewGormCompanyRepository(db.DB), codes, log)
	deviceService := catalogapp.NewDeviceService(deviceRepo, locationRepo, rentalRepo, codes, log)
	productService := catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), stockRepo, txScope, log)
	locationService := inventoryapp.NewLocationService(locationRepo, stockRepo, deviceRepo, log)
	stockService := inventoryapp.NewStockService(repos, txScope, log)
	transferRequestService := inventoryapp.NewTransferRequestService(repos, txScope, eventBus, log)
	paymentService := financeapp.NewPaymentService(repos, txScope, log)
	cnamService := financeapp.NewCNAMService(repos, txScope, log)
	rentalService := tradeapp.NewRentalService(repos, txScope, log)
	rentalPeriodService := tradeapp.NewRentalPeriodService(txScope, log)
	saleService := tradeapp.NewSaleService(repos, txScope, eventBus, log)
	renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		RemoteURL:      cfg.Printing.ChromeURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		DefaultTimeout: cfg.Printing.Timeout,
		Logger:         log,
	})
	defer func() { _ = renderer.Close() }()
	invoiceService := tradeapp.NewInvoiceService(repos, renderer, printing.Letterhead{
		Name:    cfg.Printing.CompanyName,
		Address: cfg.Printing.CompanyAddress,
		TaxID:   cfg.Printing.CompanyTaxID,
		Phone:   cfg.Printing.CompanyPhone,
	}, log)
	diagnosticService := clinicalapp.NewDiagnosticService(repos, txScope, eventBus, log)
	appointmentService := clinicalapp.NewAppointmentService(repos, txScope, log)
	taskService := workflowapp.NewTaskService(repos, txScope, eventBus, log)
	notificationService := workflowapp.NewNotificationService(notificationRepo, log)
	sweepService := workflowapp.NewSweepService(repos, log)
	fileService := filesapp.NewFileService(persistence.NewGormFileRepository(db.DB), patientRepo, objects, filesapp.Config{
		MaxSize:      cfg.Storage.MaxUploadSize,
		AllowedTypes: cfg.Storage.AllowedMIMETypes,
		PresignTTL:   cfg.Storage.PresignTTL,
	}, log)
	importService := importapp.NewImportService(repos, txScope, 0, log)
	summaryService := reportapp.NewSummaryService(persistence.NewGormSummaryRepository(db.DB),
		backends.Summary, reportapp.DefaultSummaryTTL, log)

	// Daily notification sweep
	var cron *scheduler.CronTrigger
	jobs := scheduler.New(scheduler.Config{
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, log)
	jobs.Register(workflowapp.SweepJobName, sweepService.Job)
	if cfg.Scheduler.Enabled {
		at, err := scheduler.ParseDailyCron(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := jobs.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		cron = scheduler.NewCronTrigger(at, jobs, log, workflowapp.SweepJobName)
		if err := cron.Start(context.Background()); err != nil {
			log.Fatal("Failed to start daily trigger", zap.Error(err))
		}
		log.Info("Notification sweep scheduled", zap.String("schedule", cfg.Scheduler.DailyCronSchedule))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID first so every log line and error body carries it
	engine.Use(middleware.RequestID())
	if otelProviders.Enabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName)...)
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure(cfg.App.IsProduction()))
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	apiConfig := router.APIConfig{Auth: jwtAuth}
	if profiler.Enabled() {
		apiConfig.Profiling = middleware.Profiling()
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		apiConfig.RateLimit = middleware.RateLimit(limiter)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.Idempotency.Enabled {
		apiConfig.Idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  backends.Idempotency,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		})
	}

	router.RegisterAPI(engine, router.Handlers{
		System:       handler.NewSystemHandler(cfg.App.Name, version, db),
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Patient:      handler.NewPatientHandler(patientService),
		Company:      handler.NewCompanyHandler(companyService),
		Device:       handler.NewDeviceHandler(deviceService),
		Product:      handler.NewProductHandler(productService),
		Location:     handler.NewLocationHandler(locationService),
		Stock:        handler.NewStockHandler(stockService, transferRequestService),
		Payment:      handler.NewPaymentHandler(paymentService),
		CNAM:         handler.NewCNAMHandler(cnamService),
		Rental:       handler.NewRentalHandler(rentalService, rentalPeriodService),
		Sale:         handler.NewSaleHandler(saleService, invoiceService),
		Diagnostic:   handler.NewDiagnosticHandler(diagnosticService),
		Appointment:  handler.NewAppointmentHandler(appointmentService),
		Task:         handler.NewTaskHandler(taskService),
		Notification: handler.NewNotificationHandler(notificationService, sweepService),
		File:         handler.NewFileHandler(fileService),
		Import:       handler.NewImportHandler(importService),
		Analytics:    handler.NewAnalyticsHandler(summaryService),
	}, apiConfig)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
		}, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cron != nil {
		_ = cron.Stop(ctx)
		_ = jobs.Stop(ctx)
	}
	_ = eventBus.Stop(ctx)
	_ = otelProviders.Shutdown(ctx)
	_ = profiler.Stop()

	log.Info("Server exited gracefully")
}

// newObjectStorage returns the S3 store. Outside production, with neither an
// endpoint nor credentials configured, uploads are kept in memory.
func newObjectStorage(cfg *config.Config, log *zap.Logger) (filesapp.ObjectStorage, error) {
	if !cfg.App.IsProduction() && cfg.Storage.Endpoint == "" && cfg.Storage.AccessKeyID == "" {
		log.Warn("No object storage configured, keeping uploads in memory")
		return storage.NewMemoryObjectStorage(), nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Could not verify storage bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3, nil
}
