package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	catalogapp "github.com/erp/ledger/internal/application/catalog"
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	partnerapp "github.com/erp/ledger/internal/application/partner"
	rateapp "github.com/erp/ledger/internal/application/rate"
	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/rate"
	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/migration"
	"github.com/erp/ledger/internal/infrastructure/partner"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/erp/ledger/migrations"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	telCfg := telemetryConfig(cfg)

	// The OTLP log bridge has to exist before the logger so it can tee into it
	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg, logProvider.Core(telCfg.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	if missing, err := db.MissingTables(); err != nil {
		log.Warn("Could not verify schema", zap.Error(err))
	} else if len(missing) > 0 {
		log.Fatal("Database schema is not migrated; run `migrate up` or set database.auto_migrate",
			zap.Strings("missing_tables", missing))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	ruleRepo := persistence.NewGormRuleRepository(db.DB)
	counterpartyRepo := persistence.NewGormCounterpartyRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	var directory ledger.CounterpartyDirectory = counterpartyRepo
	if cfg.Partner.BaseURL != "" {
		directory = partner.NewDirectoryClient(cfg.Partner, log)
		log.Info("Using external counterparty directory", zap.String("base_url", cfg.Partner.BaseURL))
	}

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg.Ledger, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("ledger"))
	if err != nil {
		log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(ledgerapp.NewLedgerEventHandler(ledgerMetrics, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	opts := ledgerapp.Options{
		DefaultDueDays:  cfg.Ledger.DefaultDueDays,
		TotalsTolerance: cfg.Ledger.TotalsTolerance,
		IdempotencyTTL:  cfg.Ledger.IdempotencyTTL,
	}

	productService := catalogapp.NewProductService(productRepo, recordRepo)
	productService.SetEventPublisher(eventBus)
	ruleService := rateapp.NewRuleService(ruleRepo)
	counterpartyService := partnerapp.NewCounterpartyService(counterpartyRepo)

	invoiceService := ledgerapp.NewInvoiceService(
		productRepo, recordRepo, rate.NewRepositoryRegistry(ruleRepo), directory, txScope, opts, log,
	)
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetMetrics(ledgerMetrics)

	settlementService := ledgerapp.NewSettlementService(txScope, idempotency, opts, log)
	settlementService.SetEventPublisher(eventBus)

	queryService := ledgerapp.NewQueryService(recordRepo)
	reconciliationService := reconciliation.NewService(recordRepo)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: telCfg.ServiceName, Enabled: cfg.Telemetry.Enabled}),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(meterProvider.Meter("http")),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	authCfg := middleware.AuthConfig{Logger: log}
	if cfg.JWT.Enabled {
		authCfg.JWTService = auth.NewJWTService(cfg.JWT)
	}
	if cfg.App.DefaultTenant != "" {
		if authCfg.DefaultTenant, err = uuid.Parse(cfg.App.DefaultTenant); err != nil {
			log.Fatal("app.default_tenant must be a UUID", zap.Error(err))
		}
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithProtectedMiddleware(middleware.Auth(authCfg), middleware.SpanAttributes()),
	)
	r.RegisterPublic(handler.NewHealthHandler(version, map[string]handler.Pinger{
		"database": db,
	}))
	r.Register(handler.NewProductHandler(productService)).
		Register(handler.NewRateHandler(ruleService)).
		Register(handler.NewCounterpartyHandler(counterpartyService)).
		Register(handler.NewLedgerHandler(invoiceService, settlementService, queryService)).
		Register(handler.NewReconciliationHandler(reconciliationService))
	r.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if closer, ok := idempotency.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
}

// runMigrations applies the embedded migrations over a dedicated connection,
// closed again once the schema is current
func runMigrations(dsn string, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
