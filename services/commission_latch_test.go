package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/repositories"
)

// fakeLatch reports a fixed acquire outcome and counts releases.
type fakeLatch struct {
	acquired bool
	releases int
}

func (l *fakeLatch) acquire(context.Context, string) (bool, error) { return l.acquired, nil }
func (l *fakeLatch) release(context.Context, string)               { l.releases++ }

func latchTestEngine(store repositories.WalletStore, latch orderLatch) *CommissionService {
	return &CommissionService{
		store: store,
		latch: latch,
		cfg: CommissionConfig{
			CompanyMarginShare: 0.50,
			MinPayout:          0.10,
			BalanceThreshold:   10000,
			Schedule:           DefaultCommissionSchedule(),
		},
	}
}

func latchTestOrder(buyerID primitive.ObjectID) *models.Order {
	return &models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: "ORD-LATCH",
		UserID:      buyerID,
		Status:      models.OrderStatusPaid,
		Items: []models.OrderItem{
			{Price: 2000, Cost: 1000, Quantity: 1},
		},
	}
}

// A latch held by another caller may belong to a distribution that later
// fails, so it must never stand in for the ledger check.
func TestDistributeHeldLatchDoesNotShortCircuit(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	buyer := &models.User{ID: primitive.NewObjectID(), FullName: "Yara"}
	store.AddUser(buyer)

	engine := latchTestEngine(store, &fakeLatch{acquired: false})

	order := latchTestOrder(buyer.ID)
	result, err := engine.Distribute(context.Background(), order)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if result.AlreadyDistributed {
		t.Error("undistributed order reported as already distributed")
	}
	if result.BuyerCashback != 250 {
		t.Errorf("BuyerCashback = %v, want 250", result.BuyerCashback)
	}

	u, err := store.FindUser(context.Background(), buyer.ID)
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.WalletBalance != 250 {
		t.Errorf("buyer balance = %v, want 250", u.WalletBalance)
	}

	// Once the ledger holds the payout, a repeat under the same held
	// latch is the no-op.
	result, err = engine.Distribute(context.Background(), order)
	if err != nil {
		t.Fatalf("repeat Distribute: %v", err)
	}
	if !result.AlreadyDistributed {
		t.Error("repeat call not flagged as already distributed")
	}
	u, _ = store.FindUser(context.Background(), buyer.ID)
	if u.WalletBalance != 250 {
		t.Errorf("buyer balance = %v after repeat, want 250", u.WalletBalance)
	}
}

func TestFailedDistributionReleasesOnlyOwnLatch(t *testing.T) {
	store := repositories.NewMemoryWalletStore()
	missingBuyer := latchTestOrder(primitive.NewObjectID())

	own := &fakeLatch{acquired: true}
	engine := latchTestEngine(store, own)
	if _, err := engine.Distribute(context.Background(), missingBuyer); !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
	if own.releases != 1 {
		t.Errorf("own latch released %d times, want 1", own.releases)
	}

	foreign := &fakeLatch{acquired: false}
	engine = latchTestEngine(store, foreign)
	if _, err := engine.Distribute(context.Background(), missingBuyer); !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
	if foreign.releases != 0 {
		t.Errorf("foreign latch released %d times, want 0", foreign.releases)
	}
}
