package router

import (
	"fmt"
	"strings"

	"github.com/vanmart/internal/cache"
	"github.com/vanmart/internal/config"
	publichandlers "github.com/vanmart/internal/http/handlers/public"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vm"
	}
	orderCreateRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order_create", redisPrefix),
		WindowSeconds: cfg.Order.CreateRateLimit.WindowSeconds,
		MaxRequests:   cfg.Order.CreateRateLimit.MaxRequests,
		BlockSeconds:  cfg.Order.CreateRateLimit.BlockSeconds,
		Message:       "下单过于频繁，请 %d 秒后重试",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 健康检查
	r.GET("/health", handler.Health)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", handler.Health)

		// 游客可访问，携带 token 时识别团长身份
		apiV1.GET("/marts/:id", OptionalUserJWTMiddleware(c.UserAuthService), handler.GetMart)

		public := apiV1.Group("/public")
		{
			public.GET("/marts", handler.ListMarts)
		}

		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(c.UserAuthService))
		{
			// 活动（团长）
			user.POST("/marts", handler.CreateMart)
			user.GET("/marts", handler.ListMyMarts)
			user.POST("/marts/:id/close", handler.CloseMart)
			user.POST("/marts/:id/end", handler.EndMart)
			user.DELETE("/marts/:id/goods/:goods_id", handler.DeleteGoods)
			user.GET("/marts/:id/summary", handler.GetMartSummary)

			// 订单
			user.POST("/orders", RateLimitMiddleware(cache.Client(), orderCreateRule, KeyByUserAndJSONField("mart_id")), handler.CreateOrder)
			user.GET("/orders", handler.ListOrders)
			user.GET("/orders/:id", handler.GetOrder)
			user.PATCH("/orders/:id/status", handler.UpdateOrderStatus)

			// 个人统计与消息
			user.GET("/me/stats/orders", handler.GetMyOrderStats)
			user.GET("/messages", handler.ListMessages)
			user.POST("/messages/read-all", handler.MarkAllMessagesRead)
			user.POST("/messages/:id/read", handler.MarkMessageRead)
		}
	}

	return r
}
