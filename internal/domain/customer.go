package domain

import (
	"time"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

var (
	// ErrCustomerNotFound indicates that the customer is not found.
	ErrCustomerNotFound = errorspkg.New(errorspkg.KindNotFound, "customer_not_found", "customer not found")
	// ErrEmailAlreadyExists indicates that the customer with the given email already exists.
	ErrEmailAlreadyExists = errorspkg.New(errorspkg.KindConflict, "email_already_exists", "email already registered")
	// ErrWrongCredentials indicates the wrong login or password.
	ErrWrongCredentials = errorspkg.New(errorspkg.KindUnauthorized, "invalid_credentials", "invalid login or password")
	// ErrCustomerInactive indicates that the customer is frozen.
	ErrCustomerInactive = errorspkg.New(errorspkg.KindForbidden, "customer_inactive", "customer is not active")
	// ErrCustomerHasFunds indicates that some account of the customer still holds money.
	ErrCustomerHasFunds = errorspkg.New(errorspkg.KindInvalidOperation, "customer_has_funds", "customer accounts must be empty")
	// ErrCustomerHasAccounts indicates that an account was opened for the customer while it was being deleted.
	ErrCustomerHasAccounts = errorspkg.New(errorspkg.KindInvalidOperation, "customer_has_accounts", "customer still has accounts, retry the deletion")
)

// Customer holds customer profile data.
type Customer struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	HashedPassword string    `json:"-"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateCustomerParams is the input data to register a customer.
type CreateCustomerParams struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	HashedPassword string
}

// SearchCustomersParams filters customers by a name or email substring.
type SearchCustomersParams struct {
	Query  string
	Limit  int32
	Offset int32
}
