package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	costingapp "github.com/bakeops/backend/internal/application/costing"
	"github.com/bakeops/backend/internal/infrastructure/catalog"
	"github.com/bakeops/backend/internal/infrastructure/config"
	"github.com/bakeops/backend/internal/infrastructure/logger"
	"github.com/bakeops/backend/internal/infrastructure/printing"
	"github.com/bakeops/backend/internal/infrastructure/profile"
	"github.com/bakeops/backend/internal/infrastructure/telemetry"
	"github.com/bakeops/backend/internal/interfaces/http/handler"
	"github.com/bakeops/backend/internal/interfaces/http/middleware"
	"github.com/bakeops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Bootstrap logger for telemetry setup, replaced once the OTel core exists
	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting bakery costing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	// Catalog snapshot: recipes and ingredient stock
	snapshot, err := catalog.LoadFile(ctx, cfg.Catalog.SnapshotPath)
	if err != nil {
		log.Fatal("Failed to load catalog snapshot",
			zap.String("path", cfg.Catalog.SnapshotPath),
			zap.Error(err))
	}
	log.Info("Catalog loaded",
		zap.String("path", cfg.Catalog.SnapshotPath),
		zap.Int("recipes", snapshot.RecipeCount()),
		zap.Int("ingredients", snapshot.IngredientCount()),
	)

	// Pricing profiles
	profiles, err := profile.NewRegistryFromConfig(cfg.Costing)
	if err != nil {
		log.Fatal("Failed to build pricing profiles", zap.Error(err))
	}
	log.Info("Pricing profiles registered",
		zap.Strings("profiles", profiles.Names()),
		zap.String("default", profiles.DefaultName()),
	)

	// Application services
	costingService := costingapp.NewCostingService(snapshot, snapshot, profiles, log.Named("costing"))
	costingMetrics, err := telemetry.NewCostingMetrics(providers.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create costing metrics", zap.Error(err))
	}
	costingService.SetMetrics(costingMetrics)

	sheets, err := printing.NewSheetRenderer(printing.NewTemplateEngine())
	if err != nil {
		log.Fatal("Failed to parse production sheet template", zap.Error(err))
	}

	// Handlers
	costingHandler := handler.NewCostingHandler(costingService, sheets)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, snapshot, profiles)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation: JSON field names plus decimal-aware numeric tags
	middleware.SetupValidator(costingapp.RegisterValidation)

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span, then request attributes and error marking
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests with trace context
	// 5. Security - Add security headers
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.NoRoute(middleware.NoRoute())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	costingRoutes := router.NewDomainGroup("costing", "/costing")
	costingRoutes.POST("/estimate", costingHandler.Estimate)
	costingRoutes.POST("/sheet", costingHandler.Sheet)
	costingRoutes.GET("/sizes", costingHandler.Sizes)
	costingRoutes.GET("/profiles", costingHandler.Profiles)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(costingRoutes).Register(systemRoutes)
	r.Setup()

	errorLog, err := zap.NewStdLogAt(log.Named("http"), zapcore.WarnLevel)
	if err != nil {
		log.Fatal("Failed to create server error log", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
		ErrorLog:       errorLog,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
