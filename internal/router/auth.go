package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required). Logout only clears
		// the cookie, so a stale session can always log out.
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/logout", r.authHandler.Logout)

		// Protected routes (session required)
		protected := auth.Group("")
		protected.Use(r.sessionMw.RequireAuth())
		{
			protected.GET("/me", r.authHandler.Me)
			protected.PUT("/profile", r.userHandler.UpdateProfile)
			protected.PUT("/password", r.userHandler.UpdatePassword)
		}
	}
}
