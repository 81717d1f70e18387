package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/services"
)

type OrderController struct {
	db         *mongo.Client
	commission *services.CommissionService
}

func NewOrderController(db *mongo.Client, commission *services.CommissionService) *OrderController {
	return &OrderController{db: db, commission: commission}
}

// PlaceOrder creates a pending order from the requested product quantities.
// Prices and costs are taken from the products collection at this moment.
func (oc *OrderController) PlaceOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}
	buyerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	var req models.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Order must contain at least one item",
		})
	}

	productsCollection := config.GetCollection(oc.db, "products")

	var items []models.OrderItem
	var total float64
	for _, reqItem := range req.Items {
		productID, err := primitive.ObjectIDFromHex(reqItem.ProductID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid product ID: " + reqItem.ProductID,
			})
		}

		var product models.Product
		err = productsCollection.FindOne(ctx, bson.M{"_id": productID, "isActive": true}).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusNotFound, models.Response{
					Status:  http.StatusNotFound,
					Message: "Product not found: " + reqItem.ProductID,
				})
			}
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to load product",
			})
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Cost:      product.Cost,
			Quantity:  reqItem.Quantity,
		})
		total += product.Price * float64(reqItem.Quantity)
	}

	order := models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: newOrderNumber(),
		UserID:      buyerID,
		Items:       items,
		Total:       total,
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	ordersCollection := config.GetCollection(oc.db, "orders")
	if _, err := ordersCollection.InsertOne(ctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create order",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order placed successfully",
		Data:    order,
	})
}

// ConfirmPayment marks an order paid and triggers commission distribution.
// The buyer always gets their confirmation: a distribution failure is an
// operational problem, logged for retry, never a checkout error.
func (oc *OrderController) ConfirmPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}
	buyerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID format",
		})
	}

	ordersCollection := config.GetCollection(oc.db, "orders")

	var order models.Order
	err = ordersCollection.FindOne(ctx, bson.M{"_id": orderID, "userId": buyerID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load order",
		})
	}

	if order.Status != models.OrderStatusPending {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Order is not awaiting payment",
		})
	}

	now := time.Now()
	_, err = ordersCollection.UpdateByID(ctx, order.ID, bson.M{
		"$set": bson.M{
			"status":    models.OrderStatusPaid,
			"paidAt":    now,
			"updatedAt": now,
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update order status",
		})
	}
	order.Status = models.OrderStatusPaid
	order.PaidAt = &now

	// The order is confirmed from here on. Distribution failures are
	// retried operationally, not surfaced to the buyer.
	result, err := oc.commission.Distribute(ctx, &order)
	if err != nil {
		log.Printf("Commission distribution failed for order %s: %v", order.OrderNumber, err)
	} else if result.AlreadyDistributed {
		log.Printf("Commission for order %s was already distributed", order.OrderNumber)
	} else {
		log.Printf("Order %s distributed: margin=%.2f companyShare=%.2f cashback=%.2f commissions=%d",
			order.OrderNumber, result.Margin, result.CompanyShare, result.BuyerCashback, len(result.Commissions))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment confirmed",
		Data:    order,
	})
}

// GetMyOrders returns the authenticated user's orders, newest first
func (oc *OrderController) GetMyOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}
	buyerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	ordersCollection := config.GetCollection(oc.db, "orders")
	cursor, err := ordersCollection.Find(ctx, bson.M{"userId": buyerID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch orders",
		})
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// newOrderNumber builds a short human-readable order reference
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "ORD-" + id[:10]
}
