package router

import (
	"time"

	"pipeflow/internal/config"
	"pipeflow/internal/handler"
	"pipeflow/internal/middleware"
	"pipeflow/internal/model"
	"pipeflow/internal/repository"
	"pipeflow/internal/service"
	"pipeflow/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subOrderRepo := repository.NewSubOrderRepository(db)
	productionRepo := repository.NewProductionRecordRepository(db)
	shippingRepo := repository.NewShippingRecordRepository(db)
	transitionRepo := repository.NewStatusTransitionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	orderSvc := service.NewOrderService(orderRepo, subOrderRepo, transitionRepo, dispatcher)
	recordSvc := service.NewRecordService(orderRepo, subOrderRepo, productionRepo, shippingRepo, transitionRepo, dispatcher)
	alertSvc := service.NewAlertService(notificationRepo, orderRepo, subOrderRepo, cfg.DeliveryAlertWindowDays)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ordersH := handler.NewOrderHandler(orderSvc, recordSvc)
	productionH := handler.NewProductionHandler(recordSvc)
	shippingH := handler.NewShippingHandler(recordSvc)
	alertsH := handler.NewAlertHandler(alertSvc)
	healthH := handler.NewHealthHandler(db, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleSales, model.RoleProduction, model.RoleShipping)
	v1 := r.Group("/v1", jwtMW)
	{
		// Orders — sales own the commercial lifecycle, everyone reads
		v1.GET("/orders", anyRole, ordersH.List)
		v1.GET("/orders/:id", anyRole, ordersH.Get)
		v1.GET("/orders/:id/transitions", anyRole, ordersH.Transitions)
		v1.GET("/orders/:id/progress", anyRole, ordersH.Progress)
		v1.POST("/orders", middleware.RequireRole(model.RoleAdmin, model.RoleSales), ordersH.Create)
		v1.POST("/orders/:id/sub-orders", middleware.RequireRole(model.RoleAdmin, model.RoleSales), ordersH.AddSubOrder)
		v1.POST("/orders/:id/cancel", middleware.RequireRole(model.RoleAdmin, model.RoleSales), ordersH.Cancel)

		// Sub-order ledger — read for everyone
		v1.GET("/sub-orders/:id/ledger", anyRole, ordersH.Ledger)

		// Production records — production desk writes
		prod := middleware.RequireRole(model.RoleAdmin, model.RoleProduction)
		v1.POST("/sub-orders/:id/production", prod, productionH.Create)
		v1.PUT("/production-records/:id", prod, productionH.Update)
		v1.DELETE("/production-records/:id", prod, productionH.Delete)

		// Shipping records — shipping desk writes
		ship := middleware.RequireRole(model.RoleAdmin, model.RoleShipping)
		v1.POST("/sub-orders/:id/shipping", ship, shippingH.Create)
		v1.PUT("/shipping-records/:id", ship, shippingH.Update)
		v1.DELETE("/shipping-records/:id", ship, shippingH.Delete)

		// Alert feed — per-viewer, role gating happens inside the synthesizer
		v1.GET("/alerts", anyRole, alertsH.Feed)
		v1.POST("/notifications/:id/read", anyRole, alertsH.MarkRead)

		// User administration
		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
