package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/controllers"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/websocket"
)

// RegisterUserRoutes sets up the protected wallet, referral and
// notification routes plus the websocket endpoint
func RegisterUserRoutes(e *echo.Echo, hub *websocket.Hub,
	walletController *controllers.WalletController,
	referralController *controllers.ReferralController,
	notificationController *controllers.NotificationController) {

	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	// Wallet routes
	r.GET("/wallet/balance", walletController.GetBalance)
	r.GET("/wallet/transactions", walletController.GetTransactions)
	r.POST("/wallet/withdrawals", walletController.RequestWithdrawal)

	// Referral routes
	r.GET("/referral/code", referralController.GetReferralCode)
	r.GET("/referral/network", referralController.GetNetwork)
	r.GET("/referral/qrcode/:code", referralController.GenerateReferralQRCode)

	// Notification routes
	r.GET("/notifications", notificationController.GetNotifications)
	r.PUT("/notifications/:id/read", notificationController.MarkAsRead)

	// Realtime notification stream
	r.GET("/ws", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid authentication token",
			})
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid user ID format",
			})
		}
		return websocket.HandleWebSocket(c, hub, objID)
	})
}
