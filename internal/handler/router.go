package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/origenhr/advance-api/internal/middleware"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/service"
)

// Handlers bundles the API handlers for route registration.
type Handlers struct {
	Auth    *AuthHandler
	Advance *AdvanceHandler
	Draft   *DraftHandler
	Payroll *PayrollHandler
	Stats   *StatsHandler
	Metrics *MetricsHandler
}

// RegisterRoutes mounts the API under the given prefix. Authentication is
// required everywhere except login, refresh and the OTP endpoints; role
// gating follows the console split: draft submission and cancellation belong
// to every employee, decisions and payroll to HR and Admin.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/otp/request", h.Auth.RequestOTP)
		authGroup.POST("/otp/verify", h.Auth.VerifyOTP)

		authed := authGroup.Group("")
		authed.Use(middleware.JWT(auth))
		authed.POST("/logout", h.Auth.Logout)
		authed.POST("/logout/all", h.Auth.LogoutAll)
		authed.GET("/me", h.Auth.Me)
	}

	advances := api.Group("/advances", middleware.JWT(auth))
	{
		advances.GET("", h.Advance.List)

		drafts := advances.Group("/drafts")
		drafts.POST("", h.Draft.Start)
		drafts.GET("/:id", h.Draft.Get)
		drafts.PUT("/:id/details", h.Draft.UpdateDetails)
		drafts.POST("/:id/verify", h.Draft.Verify)
		drafts.POST("/:id/back", h.Draft.Back)
		drafts.POST("/:id/submit", h.Draft.Submit)

		advances.GET("/:id", h.Advance.Get)
		advances.POST("/:id/cancel", h.Advance.Cancel)
		advances.POST("/:id/decision",
			middleware.RequireRoles(models.RoleHR, models.RoleAdmin),
			h.Advance.Decide)
	}

	payroll := api.Group("/payroll",
		middleware.JWT(auth),
		middleware.RequireRoles(models.RoleHR, models.RoleAdmin))
	{
		payroll.GET("/employees", h.Payroll.List)
		payroll.GET("/employees/export", h.Payroll.Export)
	}

	stats := api.Group("/stats",
		middleware.JWT(auth),
		middleware.RequireRoles(models.RoleHR, models.RoleAdmin))
	{
		stats.GET("/advances", h.Stats.Advances)
	}

	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
}
