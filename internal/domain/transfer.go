package domain

import (
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

var (
	// ErrInvalidAmount indicates that the amount is not positive or does not fit the balance column.
	ErrInvalidAmount = errorspkg.New(errorspkg.KindInvalidAmount, "invalid_amount", "amount must be positive with at most 4 decimal places")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errorspkg.New(errorspkg.KindInsufficientFunds, "insufficient_funds", "insufficient funds")
	// ErrSelfTransfer indicates that source and destination accounts are the same.
	ErrSelfTransfer = errorspkg.New(errorspkg.KindInvalidOperation, "self_transfer", "cannot transfer to the same account")
	// ErrMissingDestination indicates that neither destination id nor number were given.
	ErrMissingDestination = errorspkg.New(errorspkg.KindInvalidInput, "missing_destination", "to_account_id or to_account_number is required")
)

// TransferParams is the input data for the transfer transaction.
// The destination is resolved by ToAccountID when set, by ToAccountNumber otherwise.
type TransferParams struct {
	FromAccountID   int64
	ToAccountID     int64
	ToAccountNumber string
	Amount          decimal.Decimal
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	FromAccount     Account     `json:"from_account"`
	ToAccount       Account     `json:"to_account"`
	FromTransaction Transaction `json:"from_transaction"`
	ToTransaction   Transaction `json:"to_transaction"`
}

// MovementResult is the result of a single account balance change.
type MovementResult struct {
	Account     Account     `json:"account"`
	Transaction Transaction `json:"transaction"`
}
