package repositories_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/repositories"
)

func seedAccount(store *repositories.MemoryWalletStore, balance float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	store.AddUser(&models.User{ID: id, WalletBalance: balance})
	return id
}

func TestFindUserUnknownID(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	_, err := store.FindUser(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestIncrementBalanceReturnsPreviousBalance(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 40)

	before, err := store.IncrementBalance(context.Background(), id, 60)
	if err != nil {
		t.Fatalf("IncrementBalance: %v", err)
	}
	if before != 40 {
		t.Errorf("before = %v, want 40", before)
	}

	u, err := store.FindUser(context.Background(), id)
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.WalletBalance != 100 {
		t.Errorf("balance = %v, want 100", u.WalletBalance)
	}
}

func TestIncrementBalanceNegativeDelta(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 100)

	if _, err := store.IncrementBalance(context.Background(), id, -30); err != nil {
		t.Fatalf("IncrementBalance: %v", err)
	}
	u, _ := store.FindUser(context.Background(), id)
	if u.WalletBalance != 70 {
		t.Errorf("balance = %v, want 70", u.WalletBalance)
	}
}

func TestAppendTransactionFillsDefaults(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 0)

	err := store.AppendTransaction(context.Background(), &models.WalletTransaction{
		UserID: id,
		Amount: 10,
		Type:   models.TransactionTypeBonus,
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	entries, err := store.TransactionsByUser(context.Background(), id)
	if err != nil {
		t.Fatalf("TransactionsByUser: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ID.IsZero() {
		t.Error("entry ID not assigned")
	}
	if e.CreatedAt.IsZero() {
		t.Error("entry CreatedAt not assigned")
	}
	if e.Status != "completed" {
		t.Errorf("entry status = %q, want completed", e.Status)
	}
}

func TestHasOrderPayoutMatchesOnlyPayoutTypes(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 0)
	orderID := primitive.NewObjectID()

	// A withdrawal referencing an order is not a payout.
	_ = store.AppendTransaction(context.Background(), &models.WalletTransaction{
		UserID:         id,
		Amount:         -5,
		Type:           models.TransactionTypeWithdrawal,
		RelatedOrderID: &orderID,
	})
	done, err := store.HasOrderPayout(context.Background(), orderID)
	if err != nil {
		t.Fatalf("HasOrderPayout: %v", err)
	}
	if done {
		t.Error("withdrawal entry counted as a payout")
	}

	_ = store.AppendTransaction(context.Background(), &models.WalletTransaction{
		UserID:         id,
		Amount:         5,
		Type:           models.TransactionTypeCashback,
		RelatedOrderID: &orderID,
	})
	done, err = store.HasOrderPayout(context.Background(), orderID)
	if err != nil {
		t.Fatalf("HasOrderPayout: %v", err)
	}
	if !done {
		t.Error("cashback entry not recognized as a payout")
	}

	// Unrelated orders stay clean.
	done, _ = store.HasOrderPayout(context.Background(), primitive.NewObjectID())
	if done {
		t.Error("payout reported for an unrelated order")
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 50)
	failure := errors.New("deliberate failure")

	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := store.IncrementBalance(ctx, id, 100); err != nil {
			return err
		}
		if err := store.AppendTransaction(ctx, &models.WalletTransaction{
			UserID: id,
			Amount: 100,
			Type:   models.TransactionTypeCashback,
		}); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want deliberate failure", err)
	}

	u, _ := store.FindUser(context.Background(), id)
	if u.WalletBalance != 50 {
		t.Errorf("balance = %v, want 50 after rollback", u.WalletBalance)
	}
	entries, _ := store.TransactionsByUser(context.Background(), id)
	if len(entries) != 0 {
		t.Errorf("got %d ledger entries, want 0 after rollback", len(entries))
	}
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 0)

	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := store.IncrementBalance(ctx, id, 25); err != nil {
			return err
		}
		return store.AppendTransaction(ctx, &models.WalletTransaction{
			UserID: id,
			Amount: 25,
			Type:   models.TransactionTypeCommission,
		})
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	u, _ := store.FindUser(context.Background(), id)
	if u.WalletBalance != 25 {
		t.Errorf("balance = %v, want 25", u.WalletBalance)
	}
	entries, _ := store.TransactionsByUser(context.Background(), id)
	if len(entries) != 1 {
		t.Errorf("got %d ledger entries, want 1", len(entries))
	}
}

func TestFindUserReturnsCopy(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	id := seedAccount(store, 10)

	u, _ := store.FindUser(context.Background(), id)
	u.WalletBalance = 9999

	again, _ := store.FindUser(context.Background(), id)
	if again.WalletBalance != 10 {
		t.Errorf("balance = %v, want 10; mutation of a returned user leaked into the store", again.WalletBalance)
	}
}
