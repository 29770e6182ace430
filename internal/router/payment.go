package router

import "github.com/gin-gonic/gin"

func (r *Router) paymentRoutes(version *gin.RouterGroup) {
	payment := version.Group("/payment")
	{
		payment.Use(r.sessionMw.RequireAuth())
		{
			// Open a gateway order for a subscription purchase
			payment.POST("/create-order", r.paymentHandler.CreateOrder)

			// Settle a payment confirmation and activate the subscription
			payment.POST("/verify", r.paymentHandler.Verify)

			// Caller's payment history
			payment.GET("/history", r.paymentHandler.Mine)
		}
	}
}
