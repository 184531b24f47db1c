// Package ledgerrepo implements the ledger store on top of Postgres.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/accountrepo"
	"github.com/go-petr/bank-backoffice/internal/customerrepo"
	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
	"github.com/go-petr/bank-backoffice/internal/transactionrepo"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// RepoPGS runs ledger units of work in Postgres transactions.
type RepoPGS struct {
	accounts *accountrepo.RepoPGS
	conn     *sql.DB
}

var _ ledger.Store = (*RepoPGS)(nil)

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		accounts: accountrepo.NewRepoPGS(db),
		conn:     db,
	}
}

// Get returns the account with the given id without locking it.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	return r.accounts.Get(ctx, id)
}

// GetByNumber returns the account with the given number without locking it.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	return r.accounts.GetByNumber(ctx, number)
}

// ExecTx runs fn inside a read committed transaction.
//
// Row locks taken by fn through GetForUpdate and ListForUpdate are held until
// the transaction ends. The transaction is committed when fn returns nil and
// rolled back otherwise, including when ctx is cancelled.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(ledger.Tx) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(newTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

type pgsTx struct {
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
	customers    *customerrepo.RepoPGS
}

func newTx(tx *sql.Tx) *pgsTx {
	return &pgsTx{
		accounts:     accountrepo.NewRepoPGS(tx),
		transactions: transactionrepo.NewRepoPGS(tx),
		customers:    customerrepo.NewRepoPGS(tx),
	}
}

func (t *pgsTx) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return t.accounts.GetForUpdate(ctx, id)
}

func (t *pgsTx) ListForUpdate(ctx context.Context, customerID int64) ([]domain.Account, error) {
	return t.accounts.ListForUpdate(ctx, customerID)
}

func (t *pgsTx) Persist(ctx context.Context, account domain.Account) (domain.Account, error) {
	return t.accounts.Persist(ctx, account)
}

func (t *pgsTx) AppendTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	return t.transactions.Create(ctx, arg)
}

func (t *pgsTx) DeleteAccount(ctx context.Context, id int64) error {
	return t.accounts.Delete(ctx, id)
}

func (t *pgsTx) DeleteCustomer(ctx context.Context, id int64) error {
	return t.customers.Delete(ctx, id)
}
