// Package services holds the commission distribution engine and the
// notification emitter that announces its payouts.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/repositories"
)

// ErrOrderNotPaid is returned when Distribute is called for an order whose
// payment has not been confirmed.
var ErrOrderNotPaid = errors.New("order is not paid")

// defaultCostRatio estimates unit cost as a fraction of unit price for
// items that carry no explicit cost.
const defaultCostRatio = 0.80

// Notifier is the best-effort sink for payout and threshold announcements.
// Implementations must never block distribution and must swallow their own
// errors.
type Notifier interface {
	Notify(userID primitive.ObjectID, title, message, notifType string, data map[string]interface{})
}

// CommissionPayout records one upline credit issued by a distribution.
type CommissionPayout struct {
	UserID primitive.ObjectID `json:"userId"`
	Level  int                `json:"level"`
	Amount float64            `json:"amount"`
}

// DistributionResult is the audit record of one Distribute call. The
// company share is tracked here rather than in the ledger, which stays
// strictly per-account.
type DistributionResult struct {
	OrderID            primitive.ObjectID `json:"orderId"`
	AlreadyDistributed bool               `json:"alreadyDistributed"`
	Margin             float64            `json:"margin"`
	CompanyShare       float64            `json:"companyShare"`
	BuyerCashback      float64            `json:"buyerCashback"`
	Commissions        []CommissionPayout `json:"commissions,omitempty"`
}

// orderLatch marks orders whose distribution is in flight, so racing
// duplicate submissions can be absorbed cheaply. It is advisory only:
// the in-transaction ledger check is the authority on whether an order
// was paid out.
type orderLatch interface {
	acquire(ctx context.Context, key string) (bool, error)
	release(ctx context.Context, key string)
}

type redisLatch struct {
	client *redis.Client
}

func (l redisLatch) acquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, key, 1, 24*time.Hour).Result()
}

func (l redisLatch) release(ctx context.Context, key string) {
	if err := l.client.Del(ctx, key).Err(); err != nil {
		log.Printf("Warning: failed to release commission latch %s: %v", key, err)
	}
}

// CommissionService splits a paid order's margin between the platform, the
// buyer and the buyer's upline, atomically against the wallet store.
type CommissionService struct {
	store    repositories.WalletStore
	notifier Notifier
	latch    orderLatch // optional, advisory double-submit latch
	cfg      CommissionConfig
}

// NewCommissionService wires the engine. redisClient may be nil.
func NewCommissionService(store repositories.WalletStore, notifier Notifier, redisClient *redis.Client, cfg CommissionConfig) *CommissionService {
	s := &CommissionService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
	if redisClient != nil {
		s.latch = redisLatch{client: redisClient}
	}
	return s
}

// OrderMargin computes the order's total margin: (price - cost) * quantity
// summed over every line item, with cost falling back to 80% of price.
func OrderMargin(order *models.Order) float64 {
	var margin float64
	for _, item := range order.Items {
		cost := item.Cost
		if cost == 0 {
			cost = item.Price * defaultCostRatio
		}
		margin += (item.Price - cost) * float64(item.Quantity)
	}
	return margin
}

// pendingNotification is collected inside the transaction and emitted only
// after a successful commit, so notification failures can never roll back
// money movement.
type pendingNotification struct {
	userID    primitive.ObjectID
	title     string
	message   string
	notifType string
	data      map[string]interface{}
}

// Distribute applies the full commission split for one paid order. Either
// every balance mutation and ledger entry commits, or none do. Calling it
// twice for the same order is a safe no-op.
func (s *CommissionService) Distribute(ctx context.Context, order *models.Order) (*DistributionResult, error) {
	if order.Status != models.OrderStatusPaid {
		return nil, fmt.Errorf("%w: order %s has status %q", ErrOrderNotPaid, order.OrderNumber, order.Status)
	}

	result := &DistributionResult{OrderID: order.ID}

	// An order with no priced items has no margin; not an error.
	if len(order.Items) == 0 {
		return result, nil
	}

	// A held latch only means another distribution may be in flight; it
	// could still fail and roll back. The ledger check inside the
	// transaction decides, so a latch miss never short-circuits.
	latchKey := "commission:dispatched:" + order.ID.Hex()
	heldLatch := false
	if s.latch != nil {
		acquired, err := s.latch.acquire(ctx, latchKey)
		if err != nil {
			log.Printf("Warning: commission latch unavailable for order %s: %v", order.OrderNumber, err)
		} else {
			heldLatch = acquired
		}
	}

	var pending []pendingNotification

	err := s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		// The driver retries this callback on transient transaction
		// errors; every attempt starts from a clean slate.
		pending = pending[:0]
		result.AlreadyDistributed = false
		result.BuyerCashback = 0
		result.Commissions = nil

		// Idempotency guard: a ledger entry referencing this order means a
		// previous call already paid out.
		done, err := s.store.HasOrderPayout(txCtx, order.ID)
		if err != nil {
			return err
		}
		if done {
			result.AlreadyDistributed = true
			return nil
		}

		buyer, err := s.store.FindUser(txCtx, order.UserID)
		if err != nil {
			return err
		}

		margin := OrderMargin(order)
		result.Margin = margin
		if margin <= 0 {
			log.Printf("Order %s has no positive margin. No commissions distributed.", order.OrderNumber)
			return nil
		}

		companyShare := margin * s.cfg.CompanyMarginShare
		remainingPool := margin - companyShare
		buyerCashback := remainingPool * 0.5
		commissionPool := remainingPool * 0.5
		result.CompanyShare = companyShare

		if buyerCashback > 0 {
			entry := &models.WalletTransaction{
				UserID:         buyer.ID,
				Amount:         buyerCashback,
				Type:           models.TransactionTypeCashback,
				Description:    fmt.Sprintf("Cashback for order %s", order.OrderNumber),
				RelatedOrderID: &order.ID,
			}
			if err := s.credit(txCtx, buyer.ID, buyerCashback, entry, &pending); err != nil {
				return err
			}
			result.BuyerCashback = buyerCashback

			pending = append(pending, pendingNotification{
				userID:    buyer.ID,
				title:     "Cashback received",
				message:   fmt.Sprintf("Cashback of %.2f for order %s", buyerCashback, order.OrderNumber),
				notifType: models.NotificationTypeCashback,
				data: map[string]interface{}{
					"orderNumber": order.OrderNumber,
					"amount":      buyerCashback,
				},
			})
		}

		if commissionPool > 0 && len(buyer.Upline) > 0 {
			for i, ancestorID := range buyer.Upline {
				level := i + 1
				rate := s.cfg.Schedule.Rate(level)
				if rate == 0 {
					continue
				}
				payout := commissionPool * rate
				if payout < s.cfg.MinPayout {
					continue
				}

				entry := &models.WalletTransaction{
					UserID:         ancestorID,
					Amount:         payout,
					Type:           models.TransactionTypeCommission,
					Description:    fmt.Sprintf("Level %d commission from order %s", level, order.OrderNumber),
					RelatedOrderID: &order.ID,
					RelatedUserID:  &buyer.ID,
				}
				if err := s.credit(txCtx, ancestorID, payout, entry, &pending); err != nil {
					return err
				}
				result.Commissions = append(result.Commissions, CommissionPayout{
					UserID: ancestorID,
					Level:  level,
					Amount: payout,
				})

				pending = append(pending, pendingNotification{
					userID:    ancestorID,
					title:     "Commission earned",
					message:   fmt.Sprintf("Level %d commission of %.2f from %s", level, payout, buyer.FullName),
					notifType: models.NotificationTypeCommission,
					data: map[string]interface{}{
						"orderNumber": order.OrderNumber,
						"amount":      payout,
						"level":       level,
						"fromUser":    buyer.FullName,
					},
				})
			}
		}

		return nil
	})
	if err != nil {
		// Release the latch so a retry can run the distribution again.
		// A latch held by another caller is theirs to release.
		if s.latch != nil && heldLatch {
			s.latch.release(ctx, latchKey)
		}
		return nil, err
	}

	if len(pending) > 0 && s.notifier != nil {
		go s.emit(pending)
	}
	return result, nil
}

// credit applies one balance increment plus its ledger entry inside the
// surrounding transaction, and queues a threshold notification when the
// balance crosses the configured level from below.
func (s *CommissionService) credit(ctx context.Context, userID primitive.ObjectID, amount float64, entry *models.WalletTransaction, pending *[]pendingNotification) error {
	before, err := s.store.IncrementBalance(ctx, userID, amount)
	if err != nil {
		return err
	}
	if err := s.store.AppendTransaction(ctx, entry); err != nil {
		return err
	}

	if s.cfg.BalanceThreshold > 0 && before < s.cfg.BalanceThreshold && before+amount >= s.cfg.BalanceThreshold {
		*pending = append(*pending, pendingNotification{
			userID:    userID,
			title:     "Wallet milestone reached",
			message:   fmt.Sprintf("Your wallet balance has crossed %.0f", s.cfg.BalanceThreshold),
			notifType: models.NotificationTypeThresholdReached,
			data: map[string]interface{}{
				"threshold": s.cfg.BalanceThreshold,
				"balance":   before + amount,
			},
		})
	}
	return nil
}

func (s *CommissionService) emit(pending []pendingNotification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Notification emit panicked: %v", r)
		}
	}()
	for _, p := range pending {
		s.notifier.Notify(p.userID, p.title, p.message, p.notifType, p.data)
	}
}
