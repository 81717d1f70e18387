package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/models"
)

// MongoWalletStore implements WalletStore on MongoDB. Atomicity comes from
// multi-document transactions (requires a replica set, as in production);
// balance updates use $inc so concurrent credits to one user never lose
// an update even across transactions.
type MongoWalletStore struct {
	client       *mongo.Client
	users        *mongo.Collection
	transactions *mongo.Collection
}

func NewMongoWalletStore(client *mongo.Client) *MongoWalletStore {
	return &MongoWalletStore{
		client:       client,
		users:        config.GetCollection(client, "users"),
		transactions: config.GetCollection(client, "wallet_transactions"),
	}
}

func (s *MongoWalletStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *MongoWalletStore) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id.Hex(), err)
	}
	return &user, nil
}

func (s *MongoWalletStore) IncrementBalance(ctx context.Context, id primitive.ObjectID, delta float64) (float64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	update := bson.M{
		"$inc": bson.M{"walletBalance": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	var before models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to update balance for %s: %w", id.Hex(), err)
	}
	return before.WalletBalance, nil
}

func (s *MongoWalletStore) AppendTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Status == "" {
		entry.Status = "completed"
	}

	_, err := s.transactions.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

func (s *MongoWalletStore) HasOrderPayout(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"relatedOrderId": orderID,
		"type": bson.M{"$in": []string{
			models.TransactionTypeCashback,
			models.TransactionTypeCommission,
		}},
	}
	count, err := s.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check order payouts: %w", err)
	}
	return count > 0, nil
}

func (s *MongoWalletStore) TransactionsByUser(ctx context.Context, id primitive.ObjectID) ([]models.WalletTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.transactions.Find(ctx, bson.M{"userId": id}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.WalletTransaction
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode wallet transactions: %w", err)
	}
	return entries, nil
}
