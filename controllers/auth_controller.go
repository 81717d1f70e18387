package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/utils"
)

type AuthController struct {
	db *mongo.Client
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new user. When a referrer code is supplied, the new
// user's upline is snapshotted from the referrer at this moment and never
// recomputed afterwards.
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Please provide name, email and a password of at least 8 characters",
		})
	}

	usersCollection := config.GetCollection(ac.db, "users")

	// Check if user already exists
	count, err := usersCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User with this email already exists",
		})
	}

	user := models.User{
		Email:     req.Email,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Role:      "customer",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Resolve the referrer and snapshot the upline
	if req.ReferrerCode != "" {
		var referrer models.User
		err := usersCollection.FindOne(ctx, bson.M{"referralCode": req.ReferrerCode}).Decode(&referrer)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid referral code",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to look up referral code",
			})
		}
		user.ReferredBy = &referrer.ID
		user.Upline = utils.BuildUpline(referrer.ID, referrer.Upline)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}
	user.Password = string(hashedPassword)

	// Assign a unique referral code; regenerate on the rare collision
	for attempts := 0; attempts < 5; attempts++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to generate referral code",
			})
		}
		n, err := usersCollection.CountDocuments(ctx, bson.M{"referralCode": code})
		if err == nil && n == 0 {
			user.ReferralCode = code
			break
		}
	}
	if user.ReferralCode == "" {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate a unique referral code",
		})
	}

	result, err := usersCollection.InsertOne(ctx, user)
	if err != nil {
		log.Printf("Registration failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Server error during registration",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Data: map[string]interface{}{
			"id":           result.InsertedID,
			"fullName":     user.FullName,
			"email":        user.Email,
			"referralCode": user.ReferralCode,
			"uplineDepth":  len(user.Upline),
		},
	})
}

// Login verifies credentials and issues a JWT pair
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Please provide email and password",
		})
	}

	usersCollection := config.GetCollection(ac.db, "users")

	var user models.User
	err := usersCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user": map[string]interface{}{
				"id":           user.ID.Hex(),
				"fullName":     user.FullName,
				"email":        user.Email,
				"referralCode": user.ReferralCode,
			},
		},
	})
}
