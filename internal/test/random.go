package test

import (
	"time"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

// RandomAccount returns random active account owned by the given customer.
func RandomAccount(customerID int64) domain.Account {
	return domain.Account{
		ID:         randompkg.ID(),
		Number:     randompkg.AccountNumber(),
		CustomerID: customerID,
		Type:       accountpkg.TypeChecking,
		Balance:    randompkg.MoneyAmountBetween(1000, 10_000),
		Status:     accountpkg.StatusActive,
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomCustomer returns random active customer.
func RandomCustomer() domain.Customer {
	return domain.Customer{
		ID:          randompkg.ID(),
		FirstName:   randompkg.Name(),
		LastName:    randompkg.Name(),
		Email:       randompkg.Email(),
		PhoneNumber: randompkg.Phone(),
		Status:      accountpkg.CustomerActive,
		CreatedAt:   time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:   time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomAdmin returns random admin.
func RandomAdmin() domain.Admin {
	return domain.Admin{
		ID:        randompkg.ID(),
		Username:  randompkg.String(8),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}
