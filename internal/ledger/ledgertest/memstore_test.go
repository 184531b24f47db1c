package ledgertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
)

func TestExecTxRollback(t *testing.T) {
	s := NewMemStore()
	acc := s.AddAccount(s.AddCustomer(), "100")

	errBoom := errors.New("boom")

	err := s.ExecTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.GetForUpdate(context.Background(), acc.ID)
		require.NoError(t, err)

		a.Balance = decimal.NewFromInt(1)
		_, err = tx.Persist(context.Background(), a)
		require.NoError(t, err)

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, ok := s.Account(acc.ID)
	require.True(t, ok)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
}

func TestLockBlocksOtherUnits(t *testing.T) {
	s := NewMemStore()
	acc := s.AddAccount(s.AddCustomer(), "100")

	locked := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = s.ExecTx(context.Background(), func(tx ledger.Tx) error {
			_, err := tx.GetForUpdate(context.Background(), acc.ID)
			close(locked)
			time.Sleep(50 * time.Millisecond)

			return err
		})
	}()

	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.ExecTx(ctx, func(tx ledger.Tx) error {
		_, err := tx.GetForUpdate(ctx, acc.ID)
		return err
	})
	require.Error(t, err)

	<-done

	err = s.ExecTx(context.Background(), func(tx ledger.Tx) error {
		_, err := tx.GetForUpdate(context.Background(), acc.ID)
		return err
	})
	require.NoError(t, err)
}

func TestDeleteCustomerWithAccounts(t *testing.T) {
	s := NewMemStore()
	customerID := s.AddCustomer()
	s.AddAccount(customerID, "0")

	err := s.ExecTx(context.Background(), func(tx ledger.Tx) error {
		return tx.DeleteCustomer(context.Background(), customerID)
	})
	require.ErrorIs(t, err, domain.ErrCustomerHasAccounts)
	require.True(t, s.HasCustomer(customerID))

	err = s.ExecTx(context.Background(), func(tx ledger.Tx) error {
		return tx.DeleteCustomer(context.Background(), customerID+100)
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
