package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-management/config"
	deliveryHttp "go-clinic-management/internal/delivery/http"
	"go-clinic-management/internal/delivery/http/handler"
	"go-clinic-management/internal/delivery/http/middleware"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/infrastructure/cache"
	"go-clinic-management/internal/infrastructure/database"
	"go-clinic-management/internal/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/jwt"
	"go-clinic-management/pkg/metrics"
	"go-clinic-management/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const serviceName = "clinic-api"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Scheduler   *service.ExpiryScheduler
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	log, err := setupLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}
	app.Log = log

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	policy, err := service.ParseDeleteInsertPolicy(cfg.EMR.DeleteInsertPolicy)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.initialize(policy)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) (*logrus.Logger, error) {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	return log, nil
}

// initialize wires repositories, services, usecases and the HTTP server
func (app *App) initialize(policy service.DeleteInsertPolicy) {
	cfg, db, redisClient, log := app.Config, app.DB, app.RedisClient, app.Log
	now := time.Now

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsCollector := metrics.NewMetricsCollector(serviceName, registry)

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	servicesRepo := repository.NewAppointmentServicesRepository()
	billingRepo := repository.NewBillingRepository()
	catalogRepo := repository.NewCatalogRepository()
	emrRepo := repository.NewEmrRepository()
	testResultRepo := repository.NewTestResultRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	notificationRepo := repository.NewNotificationRepository()
	entryRepos := service.EmrEntryRepositories{
		Allergies:         repository.NewEmrEntryRepository[entity.PatientAllergy](),
		Diagnoses:         repository.NewEmrEntryRepository[entity.PatientDiagnosis](),
		MedicalConditions: repository.NewEmrEntryRepository[entity.PatientMedicalCondition](),
		Surgeries:         repository.NewEmrEntryRepository[entity.PatientSurgery](),
		Medications:       repository.NewEmrEntryRepository[entity.PatientMedication](),
	}

	// Initialize services
	notifier := service.NewLifecycleNotifier(log, redisClient, auditLogRepo, notificationRepo)
	pricing := service.NewPricingCalculator(log, catalogRepo)
	billing := service.NewBillingCoordinator(log, billingRepo, emrRepo)
	merger := service.NewEmrMergeEngine(log, policy, emrRepo, catalogRepo, entryRepos)
	app.Scheduler = service.NewExpiryScheduler(db, redisClient, log, service.ExpirySchedulerConfig{
		Interval: cfg.Scheduler.Interval,
		Grace:    cfg.Scheduler.Grace,
		LockTTL:  cfg.Scheduler.LockTTL,
		Notify:   cfg.Scheduler.Notify,
	}, appointmentRepo, billingRepo, notifier, metricsCollector)

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, now, appointmentRepo, servicesRepo, emrRepo, doctorProfileRepo, pricing, billing, notifier, metricsCollector)
	emrUsecase := usecase.NewEmrUsecase(db, log, now, emrRepo, userRepo, merger, notifier, metricsCollector)
	testResultUsecase := usecase.NewTestResultUsecase(db, log, now, testResultRepo, appointmentRepo, catalogRepo, notifier)
	notificationUsecase := usecase.NewNotificationUsecase(db, log, notificationRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	billingExportUsecase := usecase.NewBillingExportUsecase(db, log, billingRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, testResultUsecase, customValidator)
	emrHandler := handler.NewEmrHandler(emrUsecase, customValidator)
	testResultHandler := handler.NewTestResultHandler(testResultUsecase, customValidator)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)
	billingHandler := handler.NewBillingHandler(billingExportUsecase, customValidator, now)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	router := deliveryHttp.NewRouter(
		appointmentHandler,
		emrHandler,
		testResultHandler,
		notificationHandler,
		auditLogHandler,
		billingHandler,
		authMiddleware,
		corsMiddleware,
		metricsCollector,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and the expiry scheduler, then blocks until shutdown
func (app *App) Run() {
	if app.Config.Scheduler.Enabled {
		app.Scheduler.Start()
	}

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// Sweep runs a single expiry pass and returns the number of cancelled appointments
func (app *App) Sweep(ctx context.Context) (int, error) {
	return app.Scheduler.RunOnce(ctx)
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Scheduler.Stop()
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
