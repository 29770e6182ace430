package router

import (
	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/internal/model"
)

func (r *Router) adminRoutes(version *gin.RouterGroup) {
	admin := version.Group("/admin")
	{
		admin.Use(r.sessionMw.RequireAuth())
		admin.Use(r.sessionMw.RequireRole(model.RoleAdmin))
		{
			// User management
			admin.GET("/users", r.userHandler.List)
			admin.GET("/users/:id", r.userHandler.GetByID)
			admin.PUT("/users/:id", r.userHandler.AdminUpdate)
			admin.DELETE("/users/:id", r.userHandler.Delete)

			// Listing moderation; ?include_inactive=true widens the list
			admin.GET("/flats", r.flatHandler.List)
			admin.PUT("/flats/:id", r.flatHandler.Update)
			admin.DELETE("/flats/:id", r.flatHandler.Delete)

			// Payment oversight
			admin.GET("/payments", r.paymentHandler.List)
			admin.PUT("/payments/:id/status", r.paymentHandler.SetStatus)
		}
	}
}
