package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

var (
	// ErrAdminNotFound indicates that the admin is not found.
	ErrAdminNotFound = errorspkg.New(errorspkg.KindNotFound, "admin_not_found", "admin not found")
	// ErrUsernameAlreadyExists indicates that the admin with the given username already exists.
	ErrUsernameAlreadyExists = errorspkg.New(errorspkg.KindConflict, "username_already_exists", "username already exists")
	// ErrAdminSelfDelete indicates that an admin tried to delete itself.
	ErrAdminSelfDelete = errorspkg.New(errorspkg.KindInvalidOperation, "admin_self_delete", "admin cannot delete itself")
)

// Admin holds back-office operator data.
type Admin struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stats holds aggregate figures shown to admins.
type Stats struct {
	Customers        int64            `json:"customers"`
	Accounts         int64            `json:"accounts"`
	AccountsByStatus map[string]int64 `json:"accounts_by_status"`
	TotalBalance     decimal.Decimal  `json:"total_balance"`
}
