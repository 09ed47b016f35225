package router

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/config"
	adminhandlers "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/admin"
	publichandlers "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/public"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Gateway settlement callback: no user identity, the charge
		// state is re-verified against the gateway.
		apiV1.POST("/payments/notify", publicHandler.PaymentNotify)

		// Checkout surface: identity is enough, no role needed.
		user := apiV1.Group("")
		user.Use(IdentityMiddleware())
		{
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)
		}

		// Ledger and configuration surface: role-gated per route.
		gated := apiV1.Group("")
		gated.Use(IdentityMiddleware(), RBACMiddleware(c.AuthzService))
		{
			gated.GET("/payouts/:recipient_class", adminHandler.GetPayouts)
			gated.GET("/fees", adminHandler.GetFeeSchedule)
			gated.PUT("/fees", adminHandler.UpdateFeeSchedule)
			gated.POST("/orders/:id/status", adminHandler.UpdateOrderStatus)
			gated.GET("/admin/orders", adminHandler.ListOrders)
			gated.GET("/admin/audit-logs", adminHandler.ListAccessLogs)
		}
	}

	return r
}
