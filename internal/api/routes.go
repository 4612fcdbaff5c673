package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/config"
	"gorm.io/gorm"
)

// Controllers 路由所需的全部控制器
type Controllers struct {
	Payment *PaymentController
	Method  *MethodController
	Role    *RoleController
}

// SetupRoutes 配置路由
func SetupRoutes(db *gorm.DB, ctrls *Controllers, cfg *config.Config) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 支付生命周期路由
		payments := v1.Group("/payments")
		{
			// 静态路径路由(必须在 /:id 之前注册,Gin 会优先匹配静态段)
			payments.GET("/pending", ctrls.Payment.ListPending)
			payments.GET("/my", ctrls.Payment.ListMine)
			payments.GET("/export", ctrls.Payment.Export)
			payments.POST("/direct", ctrls.Payment.SubmitDirect)

			// 基础路由
			payments.POST("", ctrls.Payment.Submit)
			payments.GET("/:id", ctrls.Payment.Get)
			payments.GET("/:id/history", ctrls.Payment.History)
			payments.POST("/:id/approve", ctrls.Payment.Approve)
			payments.POST("/:id/reject", ctrls.Payment.Reject)
			payments.POST("/:id/message", ctrls.Payment.LinkMessage)
		}

		// 支付方式目录路由
		methods := v1.Group("/methods")
		{
			methods.GET("", ctrls.Method.List)
			methods.POST("", ctrls.Method.Add)
			methods.DELETE("/:id", ctrls.Method.Remove)
		}

		// 角色与群绑定路由
		roles := v1.Group("/roles")
		{
			roles.GET("", ctrls.Role.Get)
			roles.POST("/all", ctrls.Role.SetAll)
			roles.PUT("/:kind", ctrls.Role.Set)
		}
		v1.POST("/group", ctrls.Role.BindGroup)
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
