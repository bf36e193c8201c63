package router

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const loginAttemptsPerMinute = 20

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the history cache and order mails are then disabled and
// rate limiting falls back to in-process counters.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateStore middleware.RateStore
	if rdb != nil {
		rateStore = middleware.NewRedisRateStore(rdb)
	} else {
		mem := middleware.NewMemoryRateStore()
		go purgeLoop(mem)
		rateStore = mem
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rateStore, "api", cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Order confirmations are queued only when Redis is available.
	var notifier service.OrderNotifier
	if rdb != nil {
		notifier = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	pricingSvc := service.NewPricingService(productRepo, rdb, cfg.HistoryCacheTTL())
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, movementRepo, userRepo, notifier)
	categorySvc := service.NewCategoryService(categoryRepo)
	dashboardSvc := service.NewDashboardService(dashboardRepo)
	reportSvc := service.NewReportService(productRepo, orderRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	pricingH := handler.NewPricingHandler(pricingSvc)
	productsH := handler.NewProductsHandler(productSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, mailCB))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := r.Group("/api")

	// Auth (public)
	auth := api.Group("/auth", middleware.RateLimiter(rateStore, "login", loginAttemptsPerMinute, time.Minute))
	{
		auth.POST("/login", authH.Login)
		auth.POST("/register", authH.Register)
	}
	api.POST("/users", jwtMW, adminOnly, authH.Register)

	// Catalog reads (public)
	api.GET("/products", productsH.List)
	api.GET("/products/price-history", pricingH.PriceHistory)
	api.GET("/products/:id", productsH.Get)
	api.GET("/categories", categoriesH.List)

	// Admin: catalog maintenance and pricing engine
	admin := api.Group("", jwtMW, adminOnly)
	{
		admin.POST("/products", productsH.Create)
		admin.PUT("/products/:id", productsH.Update)
		admin.DELETE("/products/:id", productsH.Delete)

		admin.POST("/products/bulk-update-prices", pricingH.BulkUpdatePrices)
		admin.POST("/products/bulk-discount", pricingH.BulkDiscount)
		admin.POST("/products/reset-prices", pricingH.ResetPrices)
		admin.POST("/products/undo-last-price-change", pricingH.UndoLastPriceChange)

		admin.POST("/categories", categoriesH.Create)

		admin.GET("/orders", ordersH.List)
		admin.PUT("/orders/:id/status", ordersH.SetStatus)

		admin.GET("/dashboard/stats", dashboardH.Stats)
		admin.GET("/dashboard/last-orders", dashboardH.LastOrders)
		admin.GET("/dashboard/active-times", dashboardH.ActiveTimes)

		admin.GET("/reports/products", reportsH.Products)
		admin.GET("/reports/orders", reportsH.Orders)
	}

	// Any authenticated user
	authed := api.Group("", jwtMW)
	{
		authed.POST("/orders", ordersH.Place)
		authed.GET("/orders/:id", ordersH.Get)
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func purgeLoop(store *middleware.MemoryRateStore) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		store.Purge()
	}
}
