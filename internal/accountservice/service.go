// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
)

// openAttempts bounds retries when a generated number is taken between the
// uniqueness check and the insert.
const openAttempts = 3

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context, customerID int64, limit, offset int32) ([]domain.Account, error)
	UpdateStatus(ctx context.Context, id int64, status string) (domain.Account, error)
}

// TransactionRepo lists the local transaction log.
type TransactionRepo interface {
	List(ctx context.Context, accountID int64, limit, offset int32) ([]domain.Transaction, error)
}

// NumberGenerator produces free account numbers.
type NumberGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo         Repo
	transactions TransactionRepo
	store        ledger.Store
	numbers      NumberGenerator
	txTimeout    time.Duration
}

// New returns account service struct to manage account bussines logic.
// A positive txTimeout bounds the close transaction.
func New(ar Repo, tr TransactionRepo, store ledger.Store, numbers NumberGenerator, txTimeout time.Duration) *Service {
	return &Service{
		repo:         ar,
		transactions: tr,
		store:        store,
		numbers:      numbers,
		txTimeout:    txTimeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.txTimeout)
}

// Open creates an empty account of the given type for the customer.
func (s *Service) Open(ctx context.Context, customerID int64, accountType string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	for i := 0; i < openAttempts; i++ {
		number, err := s.numbers.Generate(ctx)
		if err != nil {
			return domain.Account{}, err
		}

		account, err := s.repo.Create(ctx, domain.CreateAccountParams{
			Number:     number,
			CustomerID: customerID,
			Type:       accountType,
		})
		if errors.Is(err, domain.ErrAccountNumberExists) {
			l.Info().Str("account_number", number).Msg("account number taken, retrying")
			continue
		}

		return account, err
	}

	return domain.Account{}, domain.ErrExhaustedRetries
}

// Get returns the account if it belongs to the customer.
func (s *Service) Get(ctx context.Context, customerID, id int64) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if account.CustomerID != customerID {
		zerolog.Ctx(ctx).Info().Int64("account_id", id).Int64("customer_id", customerID).Msg("account owner mismatch")
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return account, nil
}

// GetAny returns any account. It is meant for admins.
func (s *Service) GetAny(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// Lookup returns the account with the given external number.
func (s *Service) Lookup(ctx context.Context, number string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns accounts that are owned by the given customer.
func (s *Service) List(ctx context.Context, customerID int64, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.repo.List(ctx, customerID, limit, offset)
}

// History returns the latest transactions of the customer's account.
func (s *Service) History(ctx context.Context, customerID, id int64, pageSize, pageID int32) ([]domain.Transaction, error) {
	if _, err := s.Get(ctx, customerID, id); err != nil {
		return nil, err
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.transactions.List(ctx, id, limit, offset)
}

// SetStatus changes the status of any account.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (domain.Account, error) {
	return s.repo.UpdateStatus(ctx, id, status)
}

// Close deletes the customer's account. The balance must be exactly zero.
func (s *Service) Close(ctx context.Context, customerID, id int64) error {
	l := zerolog.Ctx(ctx)

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.ExecTx(txCtx, func(tx ledger.Tx) error {
		account, err := tx.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if account.CustomerID != customerID {
			return domain.ErrAccountNotFound
		}

		if !account.Balance.IsZero() {
			return domain.ErrNonZeroBalance
		}

		return tx.DeleteAccount(txCtx, id)
	})
	if err != nil {
		l.Info().Err(err).Int64("account_id", id).Msg("account close rejected")
		return err
	}

	return nil
}
