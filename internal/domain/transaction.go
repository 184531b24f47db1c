package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds.
const (
	TransactionWithdraw = "withdraw"
	TransactionDeposit  = "deposit"
	TransactionTransfer = "transfer"
	TransactionCredit   = "credit"
	TransactionDebit    = "debit"
)

// Transaction is an immutable record of a balance change.
//
// AccountID is zero once the account has been closed; AccountNumber keeps
// the reference.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id,omitempty"`
	AccountNumber string          `json:"account_number"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // signed balance delta
	Details       string          `json:"details"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateTransactionParams is the input data to append a transaction record.
type CreateTransactionParams struct {
	AccountID     int64
	AccountNumber string
	Type          string
	Amount        decimal.Decimal
	Details       string
}

// TransactionEvent is announced to the external history service after commit.
// Amount is always positive, the direction is implied by Type and Details.
type TransactionEvent struct {
	AccountID int64
	Type      string
	Amount    decimal.Decimal
	Details   string
}
