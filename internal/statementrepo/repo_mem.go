package statementrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/fin-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepoMem is an in-memory statement store. It keeps statements per user in
// insertion order and serializes the withdrawal balance check and the insert
// under one mutex, so it is safe for concurrent use.
type RepoMem struct {
	mu         sync.Mutex
	statements map[string][]domain.Statement
}

// NewRepoMem returns an empty in-memory statement store.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		statements: make(map[string][]domain.Statement),
	}
}

// Create persists the statement and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateStatementParams) (domain.Statement, error) {
	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return domain.Statement{}, domain.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if arg.Type == domain.Withdraw {
		if r.balance(arg.UserID).LessThan(amount) {
			return domain.Statement{}, domain.ErrInsufficientFunds
		}
	}

	now := time.Now().UTC()

	s := domain.Statement{
		ID:          uuid.NewString(),
		UserID:      arg.UserID,
		Type:        arg.Type,
		Amount:      arg.Amount,
		Description: arg.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.statements[arg.UserID] = append(r.statements[arg.UserID], s)

	return s, nil
}

// List returns all statements of the given user in insertion order.
func (r *RepoMem) List(ctx context.Context, userID string) ([]domain.Statement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Statement, len(r.statements[userID]))
	copy(items, r.statements[userID])

	return items, nil
}

// Get returns the statement with the given id owned by the given user.
// Statements of other users are reported as not found.
func (r *RepoMem) Get(ctx context.Context, id, userID string) (domain.Statement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.statements[userID] {
		if s.ID == id {
			return s, nil
		}
	}

	return domain.Statement{}, domain.ErrStatementNotFound
}

// balance must be called with the mutex held.
func (r *RepoMem) balance(userID string) decimal.Decimal {
	sum := decimal.Zero

	for _, s := range r.statements[userID] {
		amount, err := decimal.NewFromString(s.Amount)
		if err != nil {
			continue
		}

		if s.Type == domain.Deposit {
			sum = sum.Add(amount)
		} else {
			sum = sum.Sub(amount)
		}
	}

	return sum
}
