//go:build integration

package customerrepo_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/customerrepo"
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

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, source)

		arg := domain.CreateCustomerParams{
			FirstName:      randompkg.Name(),
			LastName:       randompkg.Name(),
			Email:          randompkg.Email(),
			PhoneNumber:    randompkg.Phone(),
			HashedPassword: randompkg.String(60),
		}

		got, err := customerrepo.NewRepoPGS(tx).Create(context.Background(), arg)
		require.NoError(t, err)

		require.NotZero(t, got.ID)
		require.Equal(t, arg.FirstName, got.FirstName)
		require.Equal(t, arg.LastName, got.LastName)
		require.Equal(t, arg.Email, got.Email)
		require.Equal(t, arg.PhoneNumber, got.PhoneNumber)
		require.Equal(t, arg.HashedPassword, got.HashedPassword)
		require.Equal(t, accountpkg.CustomerActive, got.Status)
		require.NotZero(t, got.CreatedAt)
	})

	t.Run("ErrEmailAlreadyExists", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, source)
		existing := test.SeedCustomer(t, tx)

		arg := domain.CreateCustomerParams{
			FirstName:      randompkg.Name(),
			LastName:       randompkg.Name(),
			Email:          existing.Email,
			PhoneNumber:    randompkg.Phone(),
			HashedPassword: randompkg.String(60),
		}

		got, err := customerrepo.NewRepoPGS(tx).Create(context.Background(), arg)
		require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		require.Empty(t, got)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := customerrepo.NewRepoPGS(tx)
	want := test.SeedCustomer(t, tx)

	got, err := repo.Get(context.Background(), want.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get(%d) mismatch (-want +got):\n%s", want.ID, diff)
	}

	got, err = repo.GetByEmail(context.Background(), want.Email)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)

	_, err = repo.Get(context.Background(), want.ID+1_000_000)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = repo.GetByEmail(context.Background(), randompkg.Email())
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := customerrepo.NewRepoPGS(tx)

	want := test.SeedCustomer(t, tx)
	test.SeedCustomer(t, tx)

	query := strings.ToUpper(strings.TrimSuffix(want.Email, "@email.com"))

	got, err := repo.Search(context.Background(), domain.SearchCustomersParams{Query: query, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, want.ID, got[0].ID)

	got, err = repo.Search(context.Background(), domain.SearchCustomersParams{Query: want.LastName, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	got, err = repo.Search(context.Background(), domain.SearchCustomersParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.Search(context.Background(), domain.SearchCustomersParams{Query: "no-such-customer", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := customerrepo.NewRepoPGS(tx)
	customer := test.SeedCustomer(t, tx)

	got, err := repo.UpdateStatus(context.Background(), customer.ID, accountpkg.CustomerFrozen)
	require.NoError(t, err)
	require.Equal(t, accountpkg.CustomerFrozen, got.Status)

	_, err = repo.UpdateStatus(context.Background(), customer.ID+1_000_000, accountpkg.CustomerActive)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	require.NoError(t, repo.Delete(context.Background(), customer.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), customer.ID), domain.ErrCustomerNotFound)
}

func TestDeleteWithAccounts(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, source)
	repo := customerrepo.NewRepoPGS(tx)
	customer := test.SeedCustomer(t, tx)
	test.SeedAccount(t, tx, customer.ID, "0")

	err := repo.Delete(context.Background(), customer.ID)
	require.ErrorIs(t, err, domain.ErrCustomerHasAccounts)
}
