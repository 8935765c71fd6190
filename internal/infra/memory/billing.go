package memory

import (
	"context"
	"errors"
	"sync"

	"quizline-service/internal/app"
)

// ErrInsufficientBalance is returned by Purchase when the user cannot
// afford the quiz.
var ErrInsufficientBalance = errors.New("insufficient balance")

type grantKey struct {
	userID string
	quizID string
}

// Billing is an in-memory implementation of app.Billing with simple
// balance accounts. Grants are issued once and are permanent. Top-up
// approval lives outside this core; Deposit stands in for it.
type Billing struct {
	mu       sync.RWMutex
	balances map[string]int64
	grants   map[grantKey]bool
}

var _ app.Billing = (*Billing)(nil)

func NewBilling() *Billing {
	return &Billing{
		balances: make(map[string]int64),
		grants:   make(map[grantKey]bool),
	}
}

func (b *Billing) HasAccessGrant(_ context.Context, userID, quizID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grants[grantKey{userID, quizID}], nil
}

func (b *Billing) GrantAccess(_ context.Context, userID, quizID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grants[grantKey{userID, quizID}] = true
	return nil
}

// Purchase deducts cost from the user's balance and issues the grant
// atomically. Already-granted quizzes cost nothing.
func (b *Billing) Purchase(_ context.Context, userID, quizID string, cost int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := grantKey{userID, quizID}
	if b.grants[key] {
		return nil
	}
	if b.balances[userID] < cost {
		return ErrInsufficientBalance
	}
	b.balances[userID] -= cost
	b.grants[key] = true
	return nil
}

func (b *Billing) Balance(_ context.Context, userID string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[userID], nil
}

func (b *Billing) Deposit(_ context.Context, userID string, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[userID] += amount
	return nil
}
