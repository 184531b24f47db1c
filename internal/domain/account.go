// Package domain provides defenitions of all entities.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errorspkg.New(errorspkg.KindNotFound, "account_not_found", "account not found")
	// ErrAccountNumberExists indicates that the generated account number is already taken.
	ErrAccountNumberExists = errorspkg.New(errorspkg.KindConflict, "account_number_exists", "account number already exists")
	// ErrAccountInactive indicates that money can not be moved to or from the account.
	ErrAccountInactive = errorspkg.New(errorspkg.KindInvalidOperation, "account_inactive", "account is not active")
	// ErrNonZeroBalance indicates that the account can not be closed while it holds money.
	ErrNonZeroBalance = errorspkg.New(errorspkg.KindInvalidOperation, "non_zero_balance", "account balance must be zero")
	// ErrExhaustedRetries indicates that no free account number was found.
	ErrExhaustedRetries = errorspkg.New(errorspkg.KindInternal, "exhausted_retries", "account number generation exhausted retries")
)

// Account holds customer balance data.
type Account struct {
	ID         int64           `json:"id"`
	Number     string          `json:"account_number"`
	CustomerID int64           `json:"customer_id"`
	Type       string          `json:"account_type"`
	Balance    decimal.Decimal `json:"balance"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateAccountParams is the input data to open an account.
type CreateAccountParams struct {
	Number     string
	CustomerID int64
	Type       string
}
