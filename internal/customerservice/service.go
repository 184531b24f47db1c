// Package customerservice manages business logic layer of customers.
package customerservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
)

// Repo provides data access layer interface needed by customer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package customerservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateCustomerParams) (domain.Customer, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (domain.Customer, error)
	Search(ctx context.Context, arg domain.SearchCustomersParams) ([]domain.Customer, error)
	UpdateStatus(ctx context.Context, id int64, status string) (domain.Customer, error)
}

// Service facilitates customer service layer logic.
type Service struct {
	repo      Repo
	store     ledger.Store
	txTimeout time.Duration
}

// New returns customer service struct to manage customer bussines logic.
// A positive txTimeout bounds the delete transaction.
func New(cr Repo, store ledger.Store, txTimeout time.Duration) *Service {
	return &Service{
		repo:      cr,
		store:     store,
		txTimeout: txTimeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.txTimeout)
}

// Register hashes the password and creates the customer.
func (s *Service) Register(ctx context.Context, arg domain.CreateCustomerParams, password string) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Customer{}, errorspkg.ErrInternal
	}

	arg.HashedPassword = hashedPassword

	return s.repo.Create(ctx, arg)
}

// CheckPassword returns the active customer with the given email if the password matches.
func (s *Service) CheckPassword(ctx context.Context, email, pass string) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrCustomerNotFound {
			return domain.Customer{}, domain.ErrWrongCredentials
		}

		return domain.Customer{}, err
	}

	if err := passpkg.Check(pass, c.HashedPassword); err != nil {
		l.Warn().Err(err).Int64("customer_id", c.ID).Send()
		return domain.Customer{}, domain.ErrWrongCredentials
	}

	if c.Status != accountpkg.CustomerActive {
		return domain.Customer{}, domain.ErrCustomerInactive
	}

	return c, nil
}

// Get returns the customer with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

// Search returns a page of customers whose name or email contains query.
func (s *Service) Search(ctx context.Context, query string, pageSize, pageID int32) ([]domain.Customer, error) {
	return s.repo.Search(ctx, domain.SearchCustomersParams{
		Query:  query,
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	})
}

// SetStatus changes the status of the customer.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (domain.Customer, error) {
	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes the customer together with every account it owns.
//
// All accounts are locked and checked for a zero balance before anything is
// deleted, so either everything goes or nothing does.
func (s *Service) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.ExecTx(txCtx, func(tx ledger.Tx) error {
		accounts, err := tx.ListForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		for _, a := range accounts {
			if !a.Balance.IsZero() {
				l.Info().Int64("account_id", a.ID).Str("balance", a.Balance.String()).Msg("customer delete blocked")
				return domain.ErrCustomerHasFunds
			}
		}

		for _, a := range accounts {
			if err := tx.DeleteAccount(txCtx, a.ID); err != nil {
				return err
			}
		}

		return tx.DeleteCustomer(txCtx, id)
	})
	if err != nil {
		l.Info().Err(err).Int64("customer_id", id).Msg("customer delete aborted")
		return err
	}

	return nil
}
