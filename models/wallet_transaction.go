package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet transaction types. Credits carry positive amounts, debits negative.
const (
	TransactionTypeCashback   = "cashback"
	TransactionTypeCommission = "commission"
	TransactionTypeDebit      = "debit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeBonus      = "bonus"
)

// WalletTransaction is one immutable ledger entry. Entries are never edited
// or deleted; the sum of a user's entries always equals their wallet balance.
type WalletTransaction struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Amount      float64            `json:"amount" bson:"amount"`
	Type        string             `json:"type" bson:"type"`
	Description string             `json:"description" bson:"description"`
	Status      string             `json:"status" bson:"status"` // normally "completed"
	// RelatedOrderID links payout entries back to the order that funded them.
	// RelatedUserID names the buyer whose purchase generated a commission.
	RelatedOrderID *primitive.ObjectID `json:"relatedOrderId,omitempty" bson:"relatedOrderId,omitempty"`
	RelatedUserID  *primitive.ObjectID `json:"relatedUserId,omitempty" bson:"relatedUserId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
}
