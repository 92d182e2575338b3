package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrStatementNotFound indicates that the statement is not found for the given user.
	ErrStatementNotFound = errors.New("Statement not found")
	// ErrInsufficientFunds indicates that the withdrawal amount exceeds the user balance.
	ErrInsufficientFunds = errors.New("Insufficient funds")
	// ErrInvalidAmount indicates a non-positive or unparseable statement amount.
	ErrInvalidAmount = errors.New("Amount must be a positive number")
	// ErrInvalidStatementType indicates an unsupported statement type.
	ErrInvalidStatementType = errors.New("Statement type is not supported")
	// ErrEmptyDescription indicates a statement with no description.
	ErrEmptyDescription = errors.New("Description is required")
)

// StatementType is the direction of a statement. The amount is always
// positive, direction is carried by the type.
type StatementType string

// Supported statement types.
const (
	Deposit  StatementType = "deposit"
	Withdraw StatementType = "withdraw"
)

// Statement holds one immutable ledger entry of a user.
type Statement struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Type        StatementType `json:"type"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateStatementParams is the input data to create a statement.
type CreateStatementParams struct {
	UserID      string        `json:"user_id"`
	Type        StatementType `json:"type"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
}

// Balance holds a user's statement history together with the net balance.
// The balance is kept as json.Number so it is rendered as a plain number.
type Balance struct {
	Statement []Statement `json:"statement"`
	Balance   json.Number `json:"balance"`
}
