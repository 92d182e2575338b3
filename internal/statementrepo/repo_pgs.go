// Package statementrepo manages repository layer of statements.
package statementrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/fin-ledger/internal/domain"
	"github.com/go-petr/fin-ledger/pkg/dbpkg"
	"github.com/go-petr/fin-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates statement repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns statement RepoPGS bound to an already running transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns statement RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    statements (user_id, type, amount, description)
VALUES
    ($1, $2, $3, $4)
RETURNING id, user_id, type, amount, description, created_at, updated_at
`

const lockUserQuery = `
SELECT id FROM users WHERE id = $1 FOR UPDATE
`

const balanceQuery = `
SELECT
	COALESCE(SUM(CASE WHEN type = 'deposit' THEN amount ELSE -amount END), 0)
FROM statements
WHERE user_id = $1
`

// Create persists the statement and then returns it.
//
// Withdrawals run inside a single transaction that locks the owner's user
// row, recomputes the balance and inserts only if the balance is sufficient.
// The lock serializes concurrent withdrawals for the same user, so the
// non-negative balance invariant holds under concurrent requests.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateStatementParams) (domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	if arg.Type != domain.Withdraw {
		return r.insert(ctx, r.db, arg)
	}

	if r.conn == nil {
		// Already inside a caller-managed transaction.
		return r.createWithdrawal(ctx, r.db, arg)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Statement{}, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	s, err := r.createWithdrawal(ctx, tx, arg)
	if err != nil {
		return s, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Statement{}, errorspkg.ErrInternal
	}

	return s, nil
}

func (r *RepoPGS) createWithdrawal(ctx context.Context, db dbpkg.SQLInterface, arg domain.CreateStatementParams) (domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	var s domain.Statement

	var lockedID string
	if err := db.QueryRowContext(ctx, lockUserQuery, arg.UserID).Scan(&lockedID); err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return s, domain.ErrUserNotFound
		}

		return s, errorspkg.ErrInternal
	}

	var balanceStr string
	if err := db.QueryRowContext(ctx, balanceQuery, arg.UserID).Scan(&balanceStr); err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Error().Err(err).Send()
		return s, domain.ErrInvalidAmount
	}

	if balance.LessThan(amount) {
		return s, domain.ErrInsufficientFunds
	}

	return r.insert(ctx, db, arg)
}

func (r *RepoPGS) insert(ctx context.Context, db dbpkg.SQLInterface, arg domain.CreateStatementParams) (domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	row := db.QueryRowContext(ctx, createQuery,
		arg.UserID,
		arg.Type,
		arg.Amount,
		arg.Description,
	)

	var s domain.Statement

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Type,
		&s.Amount,
		&s.Description,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "statements_user_id_fkey":
				return s, domain.ErrUserNotFound
			case "statements_amount_check":
				return s, domain.ErrInvalidAmount
			}
		}

		return s, errorspkg.ErrInternal
	}

	return s, nil
}

const listQuery = `
SELECT
	id, user_id, type, amount, description, created_at, updated_at
FROM statements
WHERE user_id = $1
ORDER BY seq
`

// List returns all statements of the given user in insertion order.
func (r *RepoPGS) List(ctx context.Context, userID string) ([]domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Statement{}

	for rows.Next() {
		var s domain.Statement
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Type,
			&s.Amount,
			&s.Description,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, s)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const getQuery = `
SELECT
	id, user_id, type, amount, description, created_at, updated_at
FROM statements
WHERE id = $1 AND user_id = $2
`

// Get returns the statement with the given id owned by the given user.
// Statements of other users are reported as not found.
func (r *RepoPGS) Get(ctx context.Context, id, userID string) (domain.Statement, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id, userID)

	var s domain.Statement

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Type,
		&s.Amount,
		&s.Description,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return s, domain.ErrStatementNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "invalid_text_representation" {
			return s, domain.ErrStatementNotFound
		}

		return s, errorspkg.ErrInternal
	}

	return s, nil
}
