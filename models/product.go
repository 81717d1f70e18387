package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product model
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	// Cost is what the platform pays per unit. Zero means unknown; margin
	// computation then estimates it as 80% of the price.
	Cost      float64   `json:"cost,omitempty" bson:"cost,omitempty"`
	Stock     int       `json:"stock" bson:"stock"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
