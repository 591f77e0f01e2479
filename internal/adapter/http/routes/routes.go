package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "dealership/docs" // swag generated
	request "dealership/internal/adapter/http/dto/request"
	"dealership/internal/adapter/http/handlers"
	"dealership/internal/adapter/http/middleware"
	"dealership/internal/infrastructure/config"
	"dealership/internal/infrastructure/logger"
	"dealership/internal/infrastructure/metrics"
	"dealership/internal/usecase"
	"dealership/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies is everything NewRouter needs to build the API.
type Dependencies struct {
	Config   config.Config
	Log      *zap.Logger
	Vehicles interfaces.IVehicleRepository
	Sales    interfaces.ISaleRepository
	// Registry receives the application metrics. A fresh registry is created when nil.
	Registry *prometheus.Registry
}

// Run loads the configuration, wires the storage selected by STORAGE_DRIVER
// and serves the API until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, closeStorage, err := newApp(ctx, *cfg, log, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Warn("[routes] failed to close storage", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("[routes] http server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("auth", cfg.Auth.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("[routes] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newApp connects the configured storage and builds the router on top of it.
// The returned func releases the storage.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger, reg *prometheus.Registry) (*gin.Engine, func() error, error) {
	repos, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	router, err := NewRouter(Dependencies{
		Config:   cfg,
		Log:      log,
		Vehicles: repos.vehicles,
		Sales:    repos.sales,
		Registry: reg,
	})
	if err != nil {
		_ = repos.close()
		return nil, nil, err
	}
	return router, repos.close, nil
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("gin validator engine is not go-playground/validator")
	}
	if err := request.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	identity, err := middleware.NewIdentity(deps.Config.Auth, deps.Log)
	if err != nil {
		return nil, err
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	var m *metrics.Metrics
	if deps.Config.Metrics.Enabled {
		m = metrics.New(reg)
	}

	vehicleUseCase := usecase.NewVehicleUseCase(deps.Vehicles, deps.Log, m)
	saleUseCase := usecase.NewSaleUseCase(deps.Sales, deps.Vehicles, usecase.SaleOptions{
		EnforceMinPrice: deps.Config.Sales.EnforceMinPrice,
	}, deps.Log, m)

	vehicleHandler := handlers.NewVehicleHandler(vehicleUseCase, deps.Log)
	saleHandler := handlers.NewSaleHandler(saleUseCase, deps.Log)

	router := gin.New()
	router.Use(logger.GinMiddleware(deps.Log), logger.Recovery(deps.Log), m.GinMiddleware())

	router.GET("/health", health)
	if deps.Config.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	if deps.Config.Swagger.Enabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addWebhookRoutes(v1, saleHandler)

	// Rotas autenticadas
	private := v1.Group("", identity)
	addVehicleRoutes(private, vehicleHandler)
	addSaleRoutes(private, saleHandler)

	return router, nil
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
