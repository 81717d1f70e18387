// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxUplineDepth caps how many ancestor referrers a user carries.
// Commission never fans out beyond this depth.
const MaxUplineDepth = 100

// User model
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"password,omitempty" bson:"password"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role          string             `json:"role" bson:"role"` // "customer", "admin"
	WalletBalance float64            `json:"walletBalance" bson:"walletBalance"`
	ReferralCode  string             `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	// ReferredBy is the direct referrer. Upline is the full ancestor chain,
	// nearest first, snapshotted at registration and never recomputed.
	ReferredBy *primitive.ObjectID  `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	Upline     []primitive.ObjectID `json:"upline,omitempty" bson:"upline,omitempty"`
	FCMToken   string               `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsActive   bool                 `json:"isActive" bson:"isActive"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// RegisterRequest is the signup payload. ReferrerCode is optional.
type RegisterRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Phone        string `json:"phone"`
	ReferrerCode string `json:"referrerCode"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Response is the standard API response envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
