package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/gorider/gorider-api/internal/api/handlers"
	"github.com/gorider/gorider-api/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(middleware.RequestID())

	requireAuth := middleware.RequireAuth(h.Tokens)
	requireAdmin := middleware.RequireAdmin(h.Users, h.Logger)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Live ride feed
	r.GET("/ws", h.HandleWebSocket)

	// Access tokens, only for the sign-in frontend
	r.POST("/jwt", middleware.RequireIssuerKey(h.TokenIssuerKey), h.IssueToken)

	// Users
	r.POST("/users", h.CreateUser)
	r.GET("/users", requireAuth, requireAdmin, h.ListUsers)
	r.GET("/users/admin/:email", requireAuth, h.IsAdmin)
	r.PATCH("/user/role/:id", requireAuth, requireAdmin, h.UpdateUserRole)

	// Cars
	r.POST("/cars", h.CreateCar)
	r.GET("/cars", h.ListCars)
	r.PATCH("/cars/:id", requireAuth, requireAdmin, h.UpdateCar)
	r.DELETE("/cars/:id", requireAuth, requireAdmin, h.DeleteCar)

	// Payments
	r.POST("/create-payment-intent", h.CreatePaymentIntent)
	r.POST("/payment", h.SubmitPayment)
	r.GET("/payment", h.ListPayments)

	// Pending rides
	r.POST("/pending-ride", h.CreatePendingRide)
	r.GET("/pending-ride", h.ListPendingRides)
	r.PATCH("/pending-ride/:id", h.UpdatePendingRide)
	r.DELETE("/pending-ride/:id", h.DeletePendingRide)
	r.POST("/fare-estimate", h.EstimateFare)

	// Coupons
	r.POST("/coupons", requireAuth, requireAdmin, h.CreateCoupon)
	r.GET("/coupons", h.GetCoupons)
	r.DELETE("/coupons/:id", requireAuth, requireAdmin, h.DeleteCoupon)

	// Operations
	admin := r.Group("", requireAuth, requireAdmin)
	{
		admin.GET("/reconcile", h.ListReconciliations)
		admin.GET("/notifications/failed", h.ListNotificationFailures)
	}
}
