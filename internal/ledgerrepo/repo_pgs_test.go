//go:build integration

package ledgerrepo_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/integrationtest"
	"github.com/go-petr/bank-backoffice/internal/ledger"
	"github.com/go-petr/bank-backoffice/internal/ledgerrepo"
	"github.com/go-petr/bank-backoffice/internal/notifier"
	"github.com/go-petr/bank-backoffice/internal/test"
	"github.com/go-petr/bank-backoffice/internal/transferservice"
)

var source string

func TestMain(m *testing.M) {
	var (
		terminate func()
		err       error
	)

	source, terminate, err = integrationtest.StartPostgres(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "integrationtest.StartPostgres() returned error: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	terminate()
	os.Exit(code)
}

func TestExecTxCommit(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)

	customer := test.SeedCustomer(t, db)
	account := test.SeedAccount(t, db, customer.ID, "100")

	err := store.ExecTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.GetForUpdate(context.Background(), account.ID)
		if err != nil {
			return err
		}

		a, err = ledger.ApplyDelta(a, decimal.RequireFromString("-40"))
		if err != nil {
			return err
		}

		if _, err := tx.Persist(context.Background(), a); err != nil {
			return err
		}

		_, err = tx.AppendTransaction(context.Background(), domain.CreateTransactionParams{
			AccountID:     a.ID,
			AccountNumber: a.Number,
			Type:          domain.TransactionWithdraw,
			Amount:        decimal.RequireFromString("-40"),
		})

		return err
	})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("60").Equal(got.Balance), got.Balance.String())
}

func TestExecTxRollback(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)

	customer := test.SeedCustomer(t, db)
	account := test.SeedAccount(t, db, customer.ID, "100")

	errBoom := errors.New("boom")

	err := store.ExecTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.GetForUpdate(context.Background(), account.ID)
		if err != nil {
			return err
		}

		a.Balance = decimal.Zero

		if _, err := tx.Persist(context.Background(), a); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := store.GetByNumber(context.Background(), account.Number)
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(got.Balance))
}

func TestDeleteCustomerCascade(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)

	customer := test.SeedCustomer(t, db)
	first := test.SeedAccount(t, db, customer.ID, "0")
	second := test.SeedAccount(t, db, customer.ID, "0")

	err := store.ExecTx(context.Background(), func(tx ledger.Tx) error {
		accounts, err := tx.ListForUpdate(context.Background(), customer.ID)
		if err != nil {
			return err
		}

		for _, a := range accounts {
			if err := tx.DeleteAccount(context.Background(), a.ID); err != nil {
				return err
			}
		}

		return tx.DeleteCustomer(context.Background(), customer.ID)
	})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), first.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = store.Get(context.Background(), second.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestConcurrentTransfers(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)
	service := transferservice.New(store, notifier.Nop{}, 10*time.Second)

	first := test.SeedCustomer(t, db)
	second := test.SeedCustomer(t, db)
	a := test.SeedAccount(t, db, first.ID, "100")
	b := test.SeedAccount(t, db, second.ID, "100")

	const n = 20

	amount := decimal.RequireFromString("10")
	errs := make(chan error, n)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			var err error

			if i%2 == 0 {
				_, err = service.Transfer(context.Background(), first.ID, domain.TransferParams{
					FromAccountID: a.ID,
					ToAccountID:   b.ID,
					Amount:        amount,
				})
			} else {
				_, err = service.Transfer(context.Background(), second.ID, domain.TransferParams{
					FromAccountID:   b.ID,
					ToAccountNumber: a.Number,
					Amount:          amount,
				})
			}

			errs <- err
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	gotA, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)

	gotB, err := store.Get(context.Background(), b.ID)
	require.NoError(t, err)

	require.True(t, decimal.RequireFromString("100").Equal(gotA.Balance), gotA.Balance.String())
	require.True(t, decimal.RequireFromString("100").Equal(gotB.Balance), gotB.Balance.String())
}

func TestConcurrentWithdrawNeverOverdraws(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)
	service := transferservice.New(store, notifier.Nop{}, 10*time.Second)

	customer := test.SeedCustomer(t, db)
	account := test.SeedAccount(t, db, customer.ID, "50")

	const n = 10

	amount := decimal.RequireFromString("10")
	errs := make(chan error, n)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := service.Withdraw(context.Background(), customer.ID, account.ID, amount)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var succeeded, rejected int

	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("Withdraw() returned unexpected error: %v", err)
		}
	}

	require.Equal(t, 5, succeeded)
	require.Equal(t, 5, rejected)

	got, err := store.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero(), got.Balance.String())
}

func TestTransferKeepsTotalBalance(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	store := ledgerrepo.NewRepoPGS(db)
	service := transferservice.New(store, notifier.Nop{}, 10*time.Second)

	first := test.SeedCustomer(t, db)
	second := test.SeedCustomer(t, db)
	a := test.SeedAccount(t, db, first.ID, "100")
	b := test.SeedAccount(t, db, second.ID, "10")

	total := func() decimal.Decimal {
		var sum decimal.Decimal

		err := db.QueryRowContext(context.Background(),
			"SELECT sum(balance) FROM accounts WHERE id IN ($1, $2)", a.ID, b.ID).Scan(&sum)
		require.NoError(t, err)

		return sum
	}

	testCases := []struct {
		name    string
		amount  string
		wantErr error
		wantA   string
	}{
		{name: "OK", amount: "40.1234", wantA: "59.8766"},
		{name: "BelowBalanceScale", amount: "0.00005", wantErr: domain.ErrInvalidAmount, wantA: "59.8766"},
		{name: "AboveBalanceRange", amount: "1000000000000000", wantErr: domain.ErrInvalidAmount, wantA: "59.8766"},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Transfer(context.Background(), first.ID, domain.TransferParams{
				FromAccountID: a.ID,
				ToAccountID:   b.ID,
				Amount:        decimal.RequireFromString(tc.amount),
			})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := store.Get(context.Background(), a.ID)
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tc.wantA).Equal(got.Balance), got.Balance.String())
			require.True(t, decimal.RequireFromString("110").Equal(total()), total().String())
		})
	}
}
