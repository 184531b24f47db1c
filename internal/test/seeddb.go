// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/accountrepo"
	"github.com/go-petr/bank-backoffice/internal/adminrepo"
	"github.com/go-petr/bank-backoffice/internal/customerrepo"
	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/transactionrepo"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

// SeedCustomer creates random Customer inside a test transaction.
func SeedCustomer(t *testing.T, tx dbpkg.SQLInterface) domain.Customer {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	arg := domain.CreateCustomerParams{
		FirstName:      randompkg.Name(),
		LastName:       randompkg.Name(),
		Email:          randompkg.Email(),
		PhoneNumber:    randompkg.Phone(),
		HashedPassword: hashedPassword,
	}

	customer, err := customerrepo.NewRepoPGS(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("customerRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return customer
}

// SeedAdmin creates random Admin inside a test transaction.
func SeedAdmin(t *testing.T, tx dbpkg.SQLInterface) domain.Admin {
	t.Helper()

	admin, err := adminrepo.NewRepoPGS(tx).Create(context.Background(), randompkg.String(12), randompkg.String(60))
	if err != nil {
		t.Fatalf("adminRepo.Create(context.Background(), ...) returned error: %v", err)
	}

	return admin
}

// SeedAccount creates checking Account with the given balance inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, customerID int64, balance string) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), domain.CreateAccountParams{
		Number:     randompkg.AccountNumber(),
		CustomerID: customerID,
		Type:       accountpkg.TypeChecking,
	})
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v) returned error: %v", customerID, err)
	}

	if balance == "" || balance == "0" {
		return account
	}

	account.Balance = decimal.RequireFromString(balance)

	account, err = accountRepo.Persist(context.Background(), account)
	if err != nil {
		t.Fatalf("accountRepo.Persist(context.Background(), %+v) returned error: %v", account, err)
	}

	return account
}

// SeedTransaction appends a transaction record of the account inside a test transaction.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, account domain.Account, kind, amount string) domain.Transaction {
	t.Helper()

	arg := domain.CreateTransactionParams{
		AccountID:     account.ID,
		AccountNumber: account.Number,
		Type:          kind,
		Amount:        decimal.RequireFromString(amount),
		Details:       randompkg.String(10),
	}

	transaction, err := transactionrepo.NewRepoPGS(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}
