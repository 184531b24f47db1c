//go:build integration

package adminrepo_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/adminrepo"
	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/integrationtest"
	"github.com/go-petr/bank-backoffice/internal/test"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
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

func TestCreate(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := adminrepo.NewRepoPGS(tx)

	username := randompkg.String(12)
	hashedPassword := randompkg.String(60)

	got, err := repo.Create(context.Background(), username, hashedPassword)
	require.NoError(t, err)
	require.NotZero(t, got.ID)
	require.Equal(t, username, got.Username)
	require.Equal(t, hashedPassword, got.HashedPassword)
	require.NotZero(t, got.CreatedAt)

	_, err = repo.Create(context.Background(), username, hashedPassword)
	require.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := adminrepo.NewRepoPGS(tx)
	want := test.SeedAdmin(t, tx)

	got, err := repo.Get(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = repo.GetByUsername(context.Background(), want.Username)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)

	require.NoError(t, repo.Delete(context.Background(), want.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), want.ID), domain.ErrAdminNotFound)

	_, err = repo.Get(context.Background(), want.ID)
	require.ErrorIs(t, err, domain.ErrAdminNotFound)

	_, err = repo.GetByUsername(context.Background(), want.Username)
	require.ErrorIs(t, err, domain.ErrAdminNotFound)
}

func TestStats(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := adminrepo.NewRepoPGS(tx)

	first := test.SeedCustomer(t, tx)
	second := test.SeedCustomer(t, tx)

	test.SeedAccount(t, tx, first.ID, "100.50")
	test.SeedAccount(t, tx, second.ID, "0.25")

	frozen := test.SeedAccount(t, tx, second.ID, "10")
	_, err := tx.ExecContext(context.Background(), "UPDATE accounts SET status = $2 WHERE id = $1", frozen.ID, accountpkg.StatusFrozen)
	require.NoError(t, err)

	got, err := repo.Stats(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(2), got.Customers)
	require.Equal(t, int64(3), got.Accounts)
	require.Equal(t, int64(2), got.AccountsByStatus[accountpkg.StatusActive])
	require.Equal(t, int64(1), got.AccountsByStatus[accountpkg.StatusFrozen])
	require.True(t, decimal.RequireFromString("110.75").Equal(got.TotalBalance), got.TotalBalance.String())
}
