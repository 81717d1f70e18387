// Package repositories holds the persistence layer for wallets and the
// commission ledger. MongoDB is the source of truth; an in-memory
// implementation exists for testing.
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
)

// ErrAccountNotFound is returned when a wallet operation targets a user
// that does not exist. Inside a distribution it aborts the whole call.
var ErrAccountNotFound = errors.New("account not found")

// WalletStore is the storage contract the commission engine runs against.
// Every mutation issued inside WithTransaction commits or rolls back as
// one unit; concurrent transactions touching the same user serialize at
// the storage layer.
type WalletStore interface {
	// WithTransaction runs fn inside one atomic unit. The context passed
	// to fn must be used for every store call made within it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// FindUser loads a user by id. Returns ErrAccountNotFound if missing.
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// IncrementBalance atomically adds delta to the user's wallet balance
	// and returns the balance as it was before the update, so callers can
	// detect threshold crossings. Returns ErrAccountNotFound if missing.
	IncrementBalance(ctx context.Context, id primitive.ObjectID, delta float64) (float64, error)

	// AppendTransaction appends an immutable ledger entry.
	AppendTransaction(ctx context.Context, entry *models.WalletTransaction) error

	// HasOrderPayout reports whether any cashback or commission entry
	// already references the given order. Used as the idempotency guard.
	HasOrderPayout(ctx context.Context, orderID primitive.ObjectID) (bool, error)

	// TransactionsByUser returns the user's ledger entries, newest first.
	TransactionsByUser(ctx context.Context, id primitive.ObjectID) ([]models.WalletTransaction, error)
}
