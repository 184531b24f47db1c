// Package transferservice moves money between accounts.
//
// Every operation locks the rows it changes, validates against the values
// read under lock, and commits all balance changes and transaction records as
// one unit. Notifications are sent only after the commit.
package transferservice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
)

// Notifier announces committed transactions.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Notifier interface {
	Notify(ctx context.Context, event domain.TransactionEvent)
}

// Service facilitates money movement logic.
type Service struct {
	store     ledger.Store
	notifier  Notifier
	txTimeout time.Duration
}

// New returns transfer service struct to manage money movement.
// A positive txTimeout bounds every unit of work.
func New(store ledger.Store, notifier Notifier, txTimeout time.Duration) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		txTimeout: txTimeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.txTimeout)
}

func (s *Service) resolveDestination(ctx context.Context, arg domain.TransferParams) (int64, error) {
	if arg.ToAccountID != 0 {
		a, err := s.store.Get(ctx, arg.ToAccountID)
		return a.ID, err
	}

	if arg.ToAccountNumber != "" {
		a, err := s.store.GetByNumber(ctx, arg.ToAccountNumber)
		return a.ID, err
	}

	return 0, domain.ErrMissingDestination
}

// Amounts are stored as numeric(19,4).
const amountScale = 4

var maxAmount = decimal.New(1, 15)

func validAmount(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(amountScale)) || amount.GreaterThanOrEqual(maxAmount) {
		zerolog.Ctx(ctx).Info().Str("amount", amount.String()).Msg("amount rejected")
		return domain.ErrInvalidAmount
	}

	return nil
}

func checkActive(accounts ...domain.Account) error {
	for _, a := range accounts {
		if a.Status != accountpkg.StatusActive {
			return domain.ErrAccountInactive
		}
	}

	return nil
}

// Transfer moves arg.Amount from the caller's account to the destination account.
func (s *Service) Transfer(ctx context.Context, callerID int64, arg domain.TransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var res domain.TransferResult

	if err := validAmount(ctx, arg.Amount); err != nil {
		return res, err
	}

	toID, err := s.resolveDestination(ctx, arg)
	if err != nil {
		l.Info().Err(err).Msg("transfer destination")
		return res, err
	}

	if toID == arg.FromAccountID {
		return res, domain.ErrSelfTransfer
	}

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.store.ExecTx(txCtx, func(tx ledger.Tx) error {
		firstID, secondID := ledger.LockOrder(arg.FromAccountID, toID)

		first, err := tx.GetForUpdate(txCtx, firstID)
		if err != nil {
			return err
		}

		second, err := tx.GetForUpdate(txCtx, secondID)
		if err != nil {
			return err
		}

		from, to := first, second
		if from.ID != arg.FromAccountID {
			from, to = second, first
		}

		if from.CustomerID != callerID {
			return domain.ErrAccountNotFound
		}

		if err := checkActive(from, to); err != nil {
			return err
		}

		from, err = ledger.ApplyDelta(from, arg.Amount.Neg())
		if err != nil {
			return err
		}

		to, err = ledger.ApplyDelta(to, arg.Amount)
		if err != nil {
			return err
		}

		if res.FromAccount, err = tx.Persist(txCtx, from); err != nil {
			return err
		}

		if res.ToAccount, err = tx.Persist(txCtx, to); err != nil {
			return err
		}

		res.FromTransaction, err = tx.AppendTransaction(txCtx, domain.CreateTransactionParams{
			AccountID:     from.ID,
			AccountNumber: from.Number,
			Type:          domain.TransactionTransfer,
			Amount:        arg.Amount.Neg(),
			Details:       fmt.Sprintf("To account %d", to.ID),
		})
		if err != nil {
			return err
		}

		res.ToTransaction, err = tx.AppendTransaction(txCtx, domain.CreateTransactionParams{
			AccountID:     to.ID,
			AccountNumber: to.Number,
			Type:          domain.TransactionTransfer,
			Amount:        arg.Amount,
			Details:       fmt.Sprintf("From account %d", from.ID),
		})

		return err
	})
	if err != nil {
		l.Info().Err(err).Int64("from", arg.FromAccountID).Int64("to", toID).Msg("transfer aborted")
		return domain.TransferResult{}, err
	}

	s.notify(ctx, res.FromTransaction)
	s.notify(ctx, res.ToTransaction)

	return res, nil
}

// Withdraw takes amount out of the caller's account.
func (s *Service) Withdraw(ctx context.Context, callerID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.MovementResult{}, err
	}

	ownedByCaller := func(a domain.Account) error {
		if a.CustomerID != callerID {
			return domain.ErrAccountNotFound
		}

		return nil
	}

	return s.move(ctx, accountID, amount.Neg(), domain.TransactionWithdraw, "", ownedByCaller)
}

// Credit adds amount to any account on behalf of an admin.
func (s *Service) Credit(ctx context.Context, adminID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.MovementResult{}, err
	}

	details := fmt.Sprintf("Credited by admin %d", adminID)
	return s.move(ctx, accountID, amount, domain.TransactionCredit, details, nil)
}

// Debit takes amount out of any account on behalf of an admin.
func (s *Service) Debit(ctx context.Context, adminID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.MovementResult{}, err
	}

	details := fmt.Sprintf("Debited by admin %d", adminID)
	return s.move(ctx, accountID, amount.Neg(), domain.TransactionDebit, details, nil)
}

func (s *Service) move(
	ctx context.Context,
	accountID int64,
	delta decimal.Decimal,
	kind, details string,
	authorize func(domain.Account) error,
) (domain.MovementResult, error) {
	l := zerolog.Ctx(ctx)

	var res domain.MovementResult

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.ExecTx(txCtx, func(tx ledger.Tx) error {
		a, err := tx.GetForUpdate(txCtx, accountID)
		if err != nil {
			return err
		}

		if authorize != nil {
			if err := authorize(a); err != nil {
				return err
			}
		}

		if err := checkActive(a); err != nil {
			return err
		}

		a, err = ledger.ApplyDelta(a, delta)
		if err != nil {
			return err
		}

		if res.Account, err = tx.Persist(txCtx, a); err != nil {
			return err
		}

		res.Transaction, err = tx.AppendTransaction(txCtx, domain.CreateTransactionParams{
			AccountID:     a.ID,
			AccountNumber: a.Number,
			Type:          kind,
			Amount:        delta,
			Details:       details,
		})

		return err
	})
	if err != nil {
		l.Info().Err(err).Int64("account_id", accountID).Str("type", kind).Msg("movement aborted")
		return domain.MovementResult{}, err
	}

	s.notify(ctx, res.Transaction)

	return res, nil
}

func (s *Service) notify(ctx context.Context, t domain.Transaction) {
	s.notifier.Notify(ctx, domain.TransactionEvent{
		AccountID: t.AccountID,
		Type:      t.Type,
		Amount:    t.Amount.Abs(),
		Details:   t.Details,
	})
}
