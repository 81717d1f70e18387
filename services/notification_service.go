package services

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/utils"
	"github.com/RKapadia01/shopezy_backend/websocket"
)

// NotificationService persists notifications and pushes them over whatever
// channels are available (websocket, FCM, email for wallet milestones).
// Every delivery failure is logged and swallowed; callers never see an
// error from here.
type NotificationService struct {
	db  *mongo.Client
	hub *websocket.Hub
}

func NewNotificationService(db *mongo.Client, hub *websocket.Hub) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// Notify implements the Notifier contract of the commission engine.
func (n *NotificationService) Notify(userID primitive.ObjectID, title, message, notifType string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if n.db != nil {
		collection := config.GetCollection(n.db, "notifications")
		if _, err := collection.InsertOne(ctx, notification); err != nil {
			log.Printf("Failed to save notification for user %s: %v", userID.Hex(), err)
		}
	}

	if n.hub != nil {
		// A disconnected user simply misses the realtime push.
		if err := n.hub.SendToUser(userID, websocket.Event{
			Type:    notifType,
			Message: message,
			Data:    data,
		}); err != nil {
			log.Printf("Websocket push skipped for user %s: %v", userID.Hex(), err)
		}
	}

	if n.db == nil {
		return
	}

	var user models.User
	err := config.GetCollection(n.db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		log.Printf("Failed to load user %s for notification delivery: %v", userID.Hex(), err)
		return
	}

	if user.FCMToken != "" {
		n.sendPush(ctx, user.FCMToken, title, message, notifType)
	}

	if notifType == models.NotificationTypeThresholdReached && user.Email != "" {
		if err := utils.SendEmail(user.Email, title, message); err != nil {
			log.Printf("Failed to send threshold email to %s: %v", user.Email, err)
		}
	}
}

// sendPush delivers an FCM push notification. Best effort.
func (n *NotificationService) sendPush(ctx context.Context, token, title, message, notifType string) {
	if config.FirebaseApp == nil {
		return
	}

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("Error getting messaging client: %v", err)
		return
	}

	fcmMessage := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: map[string]string{
			"type":      notifType,
			"timestamp": time.Now().Format(time.RFC3339),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "shopezy_wallet_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
				},
			},
		},
	}

	if _, err := client.Send(ctx, fcmMessage); err != nil {
		log.Printf("Error sending FCM notification: %v", err)
	}
}
