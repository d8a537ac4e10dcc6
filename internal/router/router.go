package router

import (
	"dailypos/internal/clock"
	"dailypos/internal/config"
	"dailypos/internal/handler"
	"dailypos/internal/infra"
	"dailypos/internal/middleware"
	"dailypos/internal/repository"
	"dailypos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-level resources the router wires together.
// Redis and Stop may be nil: without Redis exports are rendered on every
// request, without Stop the rate limiter buckets are never purged.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Clock    clock.Clock
	Registry *prometheus.Registry
	Stop     <-chan struct{}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Clock == nil {
		d.Clock = clock.NewSystem(cfg.Location())
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	metrics := infra.NewMetrics(d.Registry)

	apiLimiter := middleware.RateLimiter(1000) // 1000 req/min per IP
	loginLimiter := middleware.LoginRateLimiter()
	if d.Stop != nil {
		go apiLimiter.RunPurge(purgeInterval, d.Stop)
		go loginLimiter.RunPurge(purgeInterval, d.Stop)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins, cfg.IsProduction()))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	renderers := map[string]infra.ReportRenderer{
		"pdf": infra.NewPDFRenderer(cfg.BusinessName, cfg.CurrencyLabel),
		"csv": infra.NewCSVRenderer(),
	}
	deps := service.ClosingDeps{
		Renderers: renderers,
		Metrics:   metrics,
		Business:  cfg.BusinessName,
	}
	// assigned only when non-nil so the interfaces stay nil when disabled
	if cache := infra.NewExportCache(d.Redis, cfg.ExportCacheTTL()); cache != nil {
		deps.Cache = cache
	}
	if mailer := infra.NewMailer(cfg); mailer != nil {
		deps.Mailer = mailer
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	closingRepo := repository.NewClosingRepository(d.DB)
	ledgerRepo := repository.NewLedgerRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	catalogRepo := repository.NewCatalogRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	guard := service.NewDayGuard(closingRepo, d.Clock, metrics)
	closingSvc := service.NewClosingService(closingRepo, ledgerRepo, d.Clock, deps)
	orderSvc := service.NewOrderService(orderRepo, catalogRepo, guard, d.Clock)
	taxTypeSvc := service.NewTaxTypeService(catalogRepo)
	dashboardSvc := service.NewDashboardService(ledgerRepo, d.Clock)
	authSvc := service.NewAuthService(userRepo, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	reportH := handler.NewReportHandler(closingSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	taxTypeH := handler.NewTaxTypeHandler(taxTypeSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, closingRepo, d.Clock))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// Auth (public)
	api.POST("/token/", loginLimiter.Middleware(), authH.Login)
	api.POST("/token/refresh/", authH.Refresh)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	{
		protected.GET("/dashboard-stats/", dashboardH.Stats)
		protected.GET("/tax-types", taxTypeH.List)
		taxTypes := protected.Group("/tax-types", middleware.RequireAdmin())
		{
			taxTypes.POST("", taxTypeH.Create)
			taxTypes.PUT("/:id", taxTypeH.Update)
		}

		cashier := protected.Group("", middleware.RequireCashier())
		cashier.GET("/orders", orderH.List)
		cashier.POST("/orders", orderH.Create)
		cashier.GET("/orders/:id", orderH.Get)
		cashier.POST("/orders/:id/items", orderH.AddItem)
		cashier.PATCH("/orders/:id/status", orderH.UpdateStatus)
		cashier.GET("/payments", orderH.ListPayments)
		cashier.POST("/payments", orderH.RecordPayment)

		reports := cashier.Group("/reports")
		{
			reports.GET("/daily-pos/", reportH.Get)
			reports.POST("/daily-pos/start/", reportH.Start)
			reports.POST("/daily-pos/close/", reportH.Close)
			reports.GET("/daily-pos/pdf/", reportH.Export)
			reports.GET("/daily-pos/history/", reportH.History)
			reports.POST("/daily-pos/email/", reportH.Email)
			reports.GET("/daily/pdf/:date/", reportH.ExportByDate)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
