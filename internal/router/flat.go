package router

import "github.com/gin-gonic/gin"

func (r *Router) flatRoutes(version *gin.RouterGroup) {
	flats := version.Group("/flats")
	{
		// Browsing is public; posting and editing listings requires an
		// active subscription
		flats.GET("", r.flatHandler.List)
		flats.GET("/:id", r.flatHandler.GetByID)

		gated := flats.Group("")
		gated.Use(r.sessionMw.RequireAuth())
		gated.Use(r.sessionMw.RequireSubscription())
		{
			gated.POST("", r.flatHandler.Create)
			gated.PUT("/:id", r.flatHandler.Update)
			gated.DELETE("/:id", r.flatHandler.Delete)
		}
	}

	// Separate path so the owner listing does not collide with /flats/:id
	version.GET("/my-flats", r.sessionMw.RequireAuth(), r.flatHandler.Mine)
}
