package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/controllers"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/repositories"
	"github.com/RKapadia01/shopezy_backend/routes"
	"github.com/RKapadia01/shopezy_backend/services"
	"github.com/RKapadia01/shopezy_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase (push notifications)
	config.InitFirebase()

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Shopezy Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Wire the wallet/commission core
	walletStore := repositories.NewMongoWalletStore(client)
	notificationService := services.NewNotificationService(client, wsHub)
	commissionService := services.NewCommissionService(
		walletStore,
		notificationService,
		redisClient,
		services.DefaultCommissionConfig(),
	)

	// Initialize controllers
	authController := controllers.NewAuthController(client)
	orderController := controllers.NewOrderController(client, commissionService)
	walletController := controllers.NewWalletController(client, walletStore)
	referralController := controllers.NewReferralController(client)
	notificationController := controllers.NewNotificationController(client)

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterOrderRoutes(e, orderController)
	routes.RegisterUserRoutes(e, wsHub, walletController, referralController, notificationController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
