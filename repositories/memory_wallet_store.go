package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
)

// MemoryWalletStore implements WalletStore with in-memory maps. Used for
// testing and development. Transactions are serialized by a single mutex
// and rolled back by snapshot, which gives the same all-or-nothing and
// no-lost-update guarantees the Mongo implementation gets from sessions.
type MemoryWalletStore struct {
	txMu   sync.Mutex // serializes whole transactions
	mu     sync.RWMutex
	users  map[primitive.ObjectID]*models.User
	ledger []models.WalletTransaction
}

// NewMemoryWalletStore creates an empty in-memory store.
func NewMemoryWalletStore() *MemoryWalletStore {
	return &MemoryWalletStore{
		users: make(map[primitive.ObjectID]*models.User),
	}
}

// AddUser seeds a user. Intended for tests.
func (s *MemoryWalletStore) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *u
	s.users[u.ID] = &copy
}

func (s *MemoryWalletStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	balances := make(map[primitive.ObjectID]float64, len(s.users))
	for id, u := range s.users {
		balances[id] = u.WalletBalance
	}
	ledgerLen := len(s.ledger)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		// Roll back balances and truncate the ledger to the snapshot.
		s.mu.Lock()
		for id, bal := range balances {
			if u, ok := s.users[id]; ok {
				u.WalletBalance = bal
			}
		}
		s.ledger = s.ledger[:ledgerLen]
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryWalletStore) FindUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copy := *u
	return &copy, nil
}

func (s *MemoryWalletStore) IncrementBalance(_ context.Context, id primitive.ObjectID, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	before := u.WalletBalance
	u.WalletBalance += delta
	return before, nil
}

func (s *MemoryWalletStore) AppendTransaction(_ context.Context, entry *models.WalletTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Status == "" {
		e.Status = "completed"
	}
	s.ledger = append(s.ledger, e)
	return nil
}

func (s *MemoryWalletStore) HasOrderPayout(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.ledger {
		if e.RelatedOrderID == nil || *e.RelatedOrderID != orderID {
			continue
		}
		if e.Type == models.TransactionTypeCashback || e.Type == models.TransactionTypeCommission {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryWalletStore) TransactionsByUser(_ context.Context, id primitive.ObjectID) ([]models.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []models.WalletTransaction
	for i := len(s.ledger) - 1; i >= 0; i-- {
		if s.ledger[i].UserID == id {
			entries = append(entries, s.ledger[i])
		}
	}
	return entries, nil
}
