package router

import (
	"fmt"
	"strings"

	"github.com/shiptrack-next/internal/cache"
	"github.com/shiptrack-next/internal/config"
	adminhandlers "github.com/shiptrack-next/internal/http/handlers/admin"
	publichandlers "github.com/shiptrack-next/internal/http/handlers/public"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "st"
	}
	redisClient := cache.Client()
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxRequests,
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 快递商回调（按租户限流）
		apiV1.POST("/webhooks/courier/:courier",
			RateLimitMiddleware(redisClient, webhookRule, KeyByTenantAndIP),
			publicHandler.CourierWebhook,
		)

		// 运营端接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey))
			{
				// 租户管理
				authorized.GET("/tenants", adminHandler.ListTenants)
				authorized.POST("/tenants", adminHandler.CreateTenant)
				authorized.PUT("/tenants/:id/status", adminHandler.UpdateTenantStatus)

				// 快递商管理
				authorized.GET("/couriers", adminHandler.ListCouriers)
				authorized.POST("/couriers", adminHandler.CreateCourier)
				authorized.PUT("/couriers/:code", adminHandler.UpdateCourier)

				// 客户管理
				authorized.GET("/customers", adminHandler.ListCustomers)
				authorized.GET("/customers/:id", adminHandler.GetCustomer)
				authorized.GET("/customers/:id/score", adminHandler.GetCustomerScore)
				authorized.POST("/customers", adminHandler.CreateCustomer)
				authorized.PUT("/customers/:id", adminHandler.UpdateCustomer)
				authorized.DELETE("/customers/:id", adminHandler.DeleteCustomer)

				// 运单管理
				authorized.GET("/shipments", adminHandler.ListShipments)
				authorized.GET("/shipments/:id", adminHandler.GetShipment)
				authorized.GET("/shipments/:id/journal", adminHandler.GetShipmentJournal)
				authorized.POST("/shipments", adminHandler.CreateShipment)
				authorized.PUT("/shipments/:id/status", adminHandler.UpdateShipmentStatus)

				// 信誉分流水与对账
				authorized.GET("/score-journal", adminHandler.ListScoreJournal)
				authorized.POST("/integrity/check", adminHandler.RunIntegrityCheck)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
