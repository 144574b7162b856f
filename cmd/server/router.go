package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/config"
	"design-order-backend/internal/middleware"
)

func (a *application) router(cfg *config.Config, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", a.health.Live)
	router.GET("/health/ready", a.health.Ready)

	api := router.Group("/api/v1")

	order := api.Group("/order")
	order.GET("/draft", a.wizard.GetDraft)
	order.POST("/steps/:step", a.wizard.SubmitStep)
	order.POST("/back", a.wizard.Back)
	order.POST("/goto/:step", a.wizard.Goto)
	order.POST("/reset", a.wizard.Reset)
	order.POST("/references/links", a.wizard.AddLink)
	order.DELETE("/references/links/:index", a.wizard.RemoveLink)
	order.POST("/references/files", a.wizard.AddFile)
	order.DELETE("/references/files/:index", a.wizard.RemoveFile)
	order.POST("/checkout", a.wizard.Checkout)

	api.POST("/checkout/session", a.checkout.CreateSession)
	api.GET("/checkout/session", a.checkout.GetSession)

	api.GET("/orders", a.orders.ListOrders)
	api.GET("/orders/:order_id", a.orders.GetOrder)

	// Webhook (no auth, verified by signature)
	api.POST("/webhooks/stripe", a.webhook.HandleStripe)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.SupabaseJWTSecret))
	admin.PATCH("/orders/:order_id/status", a.admin.UpdateStatus)
	admin.POST("/orders/:order_id/deliver", a.admin.Deliver)

	return router
}
