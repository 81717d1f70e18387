package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/RKapadia01/shopezy_backend/controllers"
	"github.com/RKapadia01/shopezy_backend/middleware"
)

// RegisterOrderRoutes sets up the protected order routes
func RegisterOrderRoutes(e *echo.Echo, orderController *controllers.OrderController) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.POST("/orders", orderController.PlaceOrder)
	r.POST("/orders/:id/pay", orderController.ConfirmPayment)
	r.GET("/orders", orderController.GetMyOrders)
}
