package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ecutune/ecutune/internal/config"
	pkgAuth "github.com/ecutune/ecutune/internal/pkg/auth"
	"github.com/ecutune/ecutune/internal/server/http/handlers"
	"github.com/ecutune/ecutune/internal/server/http/middleware"
)

// Setup configures the gin router with handlers and middleware.
func Setup(facade handlers.TuningFacade, strategy pkgAuth.Strategy, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade, strategy)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	adminHandler := handlers.NewAdminHandler(facade)
	fileHandler := handlers.NewFileHandler(facade)

	api := engine.Group("/api")

	// Submission is open: it is where a customer's identity is established.
	api.POST("/orders", orderHandler.Submit)
	api.GET("/files/:name", fileHandler.Download)
	api.GET("/payments/providers", paymentHandler.Providers)
	api.POST("/payments/:provider/webhook", paymentHandler.Webhook)

	customer := api.Group("")
	customer.Use(middleware.IdentityRequired(strategy))
	customer.GET("/orders", orderHandler.List)
	customer.GET("/orders/:id", orderHandler.Get)
	customer.POST("/orders/:id/delivered", orderHandler.ConfirmDelivery)
	customer.POST("/orders/:id/rating", orderHandler.Rate)
	customer.POST("/orders/:id/payment/:provider", paymentHandler.CreateIntent)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(cfg.AdminSecret))
	admin.GET("/orders", adminHandler.List)
	admin.POST("/orders/:id/result", adminHandler.UploadResult)
	admin.POST("/orders/:id/reject", adminHandler.Reject)
	admin.DELETE("/orders/:id", adminHandler.Delete)

	return engine
}
