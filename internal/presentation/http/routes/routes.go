// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/container"
	"github.com/syab726/project2-face-sub001/internal/presentation/http/handlers"
	"github.com/syab726/project2-face-sub001/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	sessionHandlers := handlers.NewSessionHandlers(container.SessionService, container.Logger)
	paymentHandlers := handlers.NewPaymentHandlers(container.PaymentService, container.Logger)
	compensationHandlers := handlers.NewCompensationHandlers(container.CompensationService, container.Logger)
	supportHandlers := handlers.NewSupportHandlers(
		container.AuthService,
		container.PaymentService,
		container.CompensationService,
		container.IdentificationService,
		container.StatsService,
		container.Logger,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// Session and usage lifecycle (called by the site frontend)
		api.POST("/sessions", sessionHandlers.CreateSession)
		api.GET("/sessions/:sessionId", sessionHandlers.GetSession)
		api.POST("/sessions/:sessionId/usage", sessionHandlers.StartUsage)
		api.POST("/sessions/:sessionId/usage/complete", sessionHandlers.CompleteUsage)

		// Error recording (called by the analysis layer)
		api.POST("/sessions/:sessionId/errors", compensationHandlers.RecordError)

		// Payment lifecycle (called by the gateway integration). Static
		// segments come first; gin's tree cannot mix a wildcard with a
		// static sibling at the same position.
		api.POST("/payments/link", paymentHandlers.LinkPayment)
		api.POST("/payments/complete/:paymentId", paymentHandlers.CompletePayment)
		api.POST("/payments/status/:paymentId", paymentHandlers.UpdatePaymentStatus)
	}

	// Support-agent surface, bearer-token protected except login
	support := r.Group("/api/v1/support")
	{
		support.POST("/login", supportHandlers.Login)

		support.Use(middleware.SupportAuthMiddleware(container.AuthService))
		{
			support.GET("/payments/order/:orderId", supportHandlers.GetUserByOrderID)
			support.GET("/payments/id/:paymentId", supportHandlers.GetUserByPaymentID)
			support.GET("/contact/:orderId", supportHandlers.GetContactForOrder)
			support.POST("/identify", supportHandlers.Identify)
			support.POST("/report", supportHandlers.Report)
			support.POST("/sessions/:sessionId/errors/:errorId/resolve", supportHandlers.ResolveError)
			support.GET("/stats", supportHandlers.Stats)
		}
	}

	return r
}
