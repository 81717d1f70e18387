package controllers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/utils"
)

type ReferralController struct {
	db *mongo.Client
}

func NewReferralController(db *mongo.Client) *ReferralController {
	return &ReferralController{db: db}
}

// GetReferralCode returns the authenticated user's referral code,
// generating and saving one if the account predates referral codes.
func (rc *ReferralController) GetReferralCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

	usersCollection := config.GetCollection(rc.db, "users")

	var user models.User
	err = usersCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch user",
		})
	}

	if user.ReferralCode == "" {
		for attempts := 0; attempts < 5; attempts++ {
			code, err := utils.GenerateReferralCode()
			if err != nil {
				continue
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
				Message: "Failed to generate referral code",
			})
		}
		_, err = usersCollection.UpdateByID(ctx, objID, bson.M{
			"$set": bson.M{"referralCode": user.ReferralCode, "updatedAt": time.Now()},
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to save referral code",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral code retrieved successfully",
		Data: map[string]interface{}{
			"referralCode": user.ReferralCode,
			"qrCodeUrl":    "/api/referral/qrcode/" + user.ReferralCode,
		},
	})
}

// GetNetwork returns the user's direct referrals (downline, depth 1 only)
func (rc *ReferralController) GetNetwork(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

	usersCollection := config.GetCollection(rc.db, "users")

	opts := options.Find().
		SetProjection(bson.M{"fullName": 1, "email": 1, "createdAt": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := usersCollection.Find(ctx, bson.M{"referredBy": objID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referrals",
		})
	}
	defer cursor.Close(ctx)

	var referrals []models.User
	if err := cursor.All(ctx, &referrals); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode referrals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral network retrieved successfully",
		Data: map[string]interface{}{
			"count":     len(referrals),
			"referrals": referrals,
		},
	})
}

// GenerateReferralQRCode renders a referral code as a QR PNG
func (rc *ReferralController) GenerateReferralQRCode(c echo.Context) error {
	referralCode := c.Param("code")
	if referralCode == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Referral code is required",
		})
	}

	content := "shopezy://referral/" + referralCode

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code: " + err.Error(),
		})
	}

	qrCode, err = barcode.Scale(qrCode, 200, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code: " + err.Error(),
		})
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code as PNG: " + err.Error(),
		})
	}

	c.Response().Header().Set("Content-Disposition", "inline; filename=referral-"+referralCode+".png")
	return c.Blob(http.StatusOK, "image/png", buffer.Bytes())
}
