package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is a single priced line in an order. Cost is the unit cost to
// the platform; when zero, margin computation assumes 80% of the price.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Cost      float64            `json:"cost,omitempty" bson:"cost,omitempty"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Order model
type Order struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrderNumber string             `json:"orderNumber" bson:"orderNumber"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Items       []OrderItem        `json:"items" bson:"items"`
	Total       float64            `json:"total" bson:"total"`
	Status      string             `json:"status" bson:"status"`
	PaidAt      *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,min=1"`
	} `json:"items" validate:"required,min=1,dive"`
}
