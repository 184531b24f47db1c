// Package ledger defines the account ledger contracts shared by the money
// movement services and the balance mutation rules.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
)

// Reader reads accounts without taking locks.
type Reader interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
}

// Tx is a unit of work holding row locks until it is committed or rolled back.
type Tx interface {
	// GetForUpdate returns the account and locks its row for the rest of the unit.
	GetForUpdate(ctx context.Context, id int64) (domain.Account, error)
	// ListForUpdate locks every account of the customer in ascending id order.
	ListForUpdate(ctx context.Context, customerID int64) ([]domain.Account, error)
	// Persist stores the balance and status of a locked account.
	Persist(ctx context.Context, account domain.Account) (domain.Account, error)
	AppendTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	DeleteAccount(ctx context.Context, id int64) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// Store runs units of work over the ledger.
type Store interface {
	Reader
	// ExecTx runs fn in a single unit of work. The unit is committed when fn
	// returns nil and rolled back on every other exit path.
	ExecTx(ctx context.Context, fn func(Tx) error) error
}

// ApplyDelta returns account with delta added to its balance.
//
// It never writes; the caller persists the result inside its unit of work.
func ApplyDelta(account domain.Account, delta decimal.Decimal) (domain.Account, error) {
	balance := account.Balance.Add(delta)
	if balance.IsNegative() {
		return account, domain.ErrInsufficientFunds
	}

	account.Balance = balance

	return account, nil
}

// LockOrder returns the two account ids in the order their rows must be locked.
func LockOrder(a, b int64) (first, second int64) {
	if a < b {
		return a, b
	}

	return b, a
}
