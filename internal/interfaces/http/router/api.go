package router

import (
	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/estate/backend/internal/interfaces/http/handler"
	"github.com/estate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Agreements *handler.AgreementHandler
	Schedules  *handler.ScheduleHandler
	Invoices   *handler.InvoiceHandler
	Numbering  *handler.NumberingHandler
	System     *handler.SystemHandler
}

// EngineConfig configures the middleware stack of the API engine
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Logger  *zap.Logger
	Tracing middleware.TracingConfig
	// Meter records HTTP metrics; nil disables them
	Meter   metric.Meter
	Tenant  middleware.TenantMiddlewareConfig
	Swagger middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the full middleware stack and every
// invoicing route mounted under /api/v1
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, *Router, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Tenant.Logger == nil {
		cfg.Tenant.Logger = log
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, nil, err
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, logger.WithQuietPaths("/health")))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.TenantMiddlewareWithConfig(cfg.Tenant))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	// API documentation, served from the docs package registered by the binary
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := NewRouter(engine, WithAPIVersion("v1"))
	RegisterInvoicingRoutes(r, h)
	r.Setup()

	return engine, r, nil
}

// RegisterInvoicingRoutes registers the agreement, schedule, invoice and
// numbering domain groups
func RegisterInvoicingRoutes(r *Router, h Handlers) {
	if h.Agreements != nil {
		agreements := NewDomainGroup("agreements", "/agreements")
		agreements.POST("", h.Agreements.Create)
		agreements.GET("", h.Agreements.List)
		agreements.GET("/:id", h.Agreements.GetByID)
		agreements.PUT("/:id/plan", h.Agreements.SetPlan)
		agreements.DELETE("/:id/plan", h.Agreements.ClearPlan)
		agreements.POST("/:id/cancel", h.Agreements.Cancel)
		agreements.GET("/:id/invoices", h.Agreements.ListInvoices)
		if h.Schedules != nil {
			schedule := agreements.Group("schedule", "/:id/schedule")
			schedule.POST("", h.Schedules.Generate)
			schedule.POST("/preview", h.Schedules.Preview)
		}
		r.Register(agreements)
	}

	if h.Invoices != nil {
		invoices := NewDomainGroup("invoices", "/invoices")
		invoices.GET("", h.Invoices.List)
		invoices.GET("/:id", h.Invoices.GetByID)
		r.Register(invoices)
	}

	if h.Numbering != nil {
		numbering := NewDomainGroup("numbering", "/numbering")
		numbering.GET("", h.Numbering.List)
		numbering.PUT("", h.Numbering.Upsert)
		numbering.GET("/:prefix", h.Numbering.GetByPrefix)
		r.Register(numbering)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		r.Register(system)
	}
}
