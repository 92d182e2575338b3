// Package statementservice manages business logic layer of statements.
package statementservice

import (
	"context"
	"encoding/json"

	"github.com/go-petr/fin-ledger/internal/domain"
	"github.com/go-petr/fin-ledger/pkg/configpkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by statement service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package statementservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateStatementParams) (domain.Statement, error)
	List(ctx context.Context, userID string) ([]domain.Statement, error)
	Get(ctx context.Context, id, userID string) (domain.Statement, error)
}

// UserRepo provides the user lookup interface needed by statement service layer.
type UserRepo interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Service facilitates statement service layer logic.
type Service struct {
	repo            Repo
	userRepo        UserRepo
	truncateAmounts bool
}

// New returns statement service struct to manage statement business logic.
func New(sr Repo, ur UserRepo, amountRounding string) *Service {
	return &Service{
		repo:            sr,
		userRepo:        ur,
		truncateAmounts: amountRounding == configpkg.AmountRoundingTruncate,
	}
}

// Balance returns the net balance of the given statements: the sum of
// deposits minus the sum of withdrawals. An empty history yields zero.
func Balance(statements []domain.Statement) decimal.Decimal {
	sum := decimal.Zero

	for _, s := range statements {
		amount, err := decimal.NewFromString(s.Amount)
		if err != nil {
			// Stored amounts are validated at write time.
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

// Create records a deposit or a withdrawal for the given user and returns
// the persisted statement. Withdrawals exceeding the current balance are
// rejected with domain.ErrInsufficientFunds and leave no record.
func (s *Service) Create(ctx context.Context, arg domain.CreateStatementParams) (domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	if arg.Type != domain.Deposit && arg.Type != domain.Withdraw {
		return domain.Statement{}, domain.ErrInvalidStatementType
	}

	if arg.Description == "" {
		return domain.Statement{}, domain.ErrEmptyDescription
	}

	amount, err := s.normalizeAmount(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Statement{}, err
	}

	arg.Amount = amount

	if _, err := s.userRepo.Get(ctx, arg.UserID); err != nil {
		return domain.Statement{}, err
	}

	if arg.Type == domain.Withdraw {
		statements, err := s.repo.List(ctx, arg.UserID)
		if err != nil {
			return domain.Statement{}, err
		}

		withdrawal, err := decimal.NewFromString(arg.Amount)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.Statement{}, domain.ErrInvalidAmount
		}

		// Fast fail. The durable store re-checks the balance atomically
		// inside the insert transaction.
		if Balance(statements).LessThan(withdrawal) {
			return domain.Statement{}, domain.ErrInsufficientFunds
		}
	}

	created, err := s.repo.Create(ctx, arg)
	if err != nil {
		return domain.Statement{}, err
	}

	return created, nil
}

// GetBalance returns the user's full statement history in insertion order
// together with the net balance.
func (s *Service) GetBalance(ctx context.Context, userID string) (domain.Balance, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return domain.Balance{}, err
	}

	statements, err := s.repo.List(ctx, userID)
	if err != nil {
		return domain.Balance{}, err
	}

	return domain.Balance{
		Statement: statements,
		Balance:   json.Number(Balance(statements).String()),
	}, nil
}

// Get returns a single statement of the given user.
func (s *Service) Get(ctx context.Context, id, userID string) (domain.Statement, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return domain.Statement{}, err
	}

	statement, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return domain.Statement{}, err
	}

	return statement, nil
}

func (s *Service) normalizeAmount(amount string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", domain.ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return "", domain.ErrInvalidAmount
	}

	if d.Exponent() < -2 {
		if !s.truncateAmounts {
			return "", domain.ErrInvalidAmount
		}

		d = d.Truncate(2)
	}

	return d.String(), nil
}
