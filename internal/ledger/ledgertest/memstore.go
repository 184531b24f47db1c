// Package ledgertest provides an in-memory ledger.Store for tests.
//
// MemStore honours row locks the way the Postgres store does: a locked
// account blocks every other unit of work that tries to lock it until the
// holder commits or rolls back, and staged changes become visible only on
// commit.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/ledger"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

// MemStore is an in-memory ledger.Store.
type MemStore struct {
	mu           sync.Mutex
	locks        map[int64]chan struct{}
	accounts     map[int64]domain.Account
	customers    map[int64]struct{}
	transactions []domain.Transaction
	nextID       int64

	// Fail, when set, is consulted before every Tx operation. A non-nil
	// result is returned from the operation.
	Fail func(op string, accountID int64) error
}

var _ ledger.Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		locks:     make(map[int64]chan struct{}),
		accounts:  make(map[int64]domain.Account),
		customers: make(map[int64]struct{}),
	}
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

// AddCustomer registers a customer and returns its id.
func (s *MemStore) AddCustomer() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.customers[id] = struct{}{}

	return id
}

// AddAccount stores an active checking account with the given balance.
func (s *MemStore) AddAccount(customerID int64, balance string) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	a := domain.Account{
		ID:         s.id(),
		Number:     randompkg.AccountNumber(),
		CustomerID: customerID,
		Type:       accountpkg.TypeChecking,
		Balance:    decimal.RequireFromString(balance),
		Status:     accountpkg.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.accounts[a.ID] = a

	return a
}

// SetStatus changes the committed status of an account.
func (s *MemStore) SetStatus(id int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accounts[id]
	a.Status = status
	s.accounts[id] = a
}

// Account returns the committed state of an account.
func (s *MemStore) Account(id int64) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]

	return a, ok
}

// HasCustomer reports whether the customer still exists.
func (s *MemStore) HasCustomer(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.customers[id]

	return ok
}

// Transactions returns the committed transaction log.
func (s *MemStore) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Transaction(nil), s.transactions...)
}

// TotalBalance returns the sum of every committed balance.
func (s *MemStore) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}

	return total
}

// Get returns the committed account without locking it.
func (s *MemStore) Get(_ context.Context, id int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByNumber returns the committed account with the given number.
func (s *MemStore) GetByNumber(_ context.Context, number string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Number == number {
			return a, nil
		}
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

// ExecTx runs fn in a unit of work that is committed only when fn returns nil
// and the context is still alive.
func (s *MemStore) ExecTx(ctx context.Context, fn func(ledger.Tx) error) error {
	tx := &memTx{
		store:            s,
		held:             make(map[int64]struct{}),
		staged:           make(map[int64]domain.Account),
		deletedAccounts:  make(map[int64]struct{}),
		deletedCustomers: make(map[int64]struct{}),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tx.commit()

	return nil
}

func (s *MemStore) lock(ctx context.Context, id int64) error {
	s.mu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemStore) unlock(id int64) {
	s.mu.Lock()
	ch := s.locks[id]
	s.mu.Unlock()

	<-ch
}

type memTx struct {
	store            *MemStore
	held             map[int64]struct{}
	staged           map[int64]domain.Account
	appended         []domain.Transaction
	deletedAccounts  map[int64]struct{}
	deletedCustomers map[int64]struct{}
}

func (tx *memTx) fail(op string, id int64) error {
	if tx.store.Fail == nil {
		return nil
	}

	return tx.store.Fail(op, id)
}

func (tx *memTx) release() {
	for id := range tx.held {
		tx.store.unlock(id)
	}
}

func (tx *memTx) commit() {
	s := tx.store

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range tx.staged {
		s.accounts[id] = a
	}

	s.transactions = append(s.transactions, tx.appended...)

	for id := range tx.deletedAccounts {
		delete(s.accounts, id)
	}

	for id := range tx.deletedCustomers {
		delete(s.customers, id)
	}
}

func (tx *memTx) current(id int64) (domain.Account, bool) {
	if _, ok := tx.deletedAccounts[id]; ok {
		return domain.Account{}, false
	}

	if a, ok := tx.staged[id]; ok {
		return a, true
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	a, ok := tx.store.accounts[id]

	return a, ok
}

func (tx *memTx) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	if err := tx.fail("GetForUpdate", id); err != nil {
		return domain.Account{}, err
	}

	if _, ok := tx.held[id]; !ok {
		if err := tx.store.lock(ctx, id); err != nil {
			return domain.Account{}, errorspkg.ErrInternal
		}

		tx.held[id] = struct{}{}
	}

	a, ok := tx.current(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

func (tx *memTx) ListForUpdate(ctx context.Context, customerID int64) ([]domain.Account, error) {
	if err := tx.fail("ListForUpdate", customerID); err != nil {
		return nil, err
	}

	tx.store.mu.Lock()
	var ids []int64
	for id, a := range tx.store.accounts {
		if a.CustomerID == customerID {
			ids = append(ids, id)
		}
	}
	tx.store.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	accounts := []domain.Account{}

	for _, id := range ids {
		a, err := tx.GetForUpdate(ctx, id)
		if err == domain.ErrAccountNotFound {
			continue
		}

		if err != nil {
			return nil, err
		}

		accounts = append(accounts, a)
	}

	return accounts, nil
}

func (tx *memTx) Persist(_ context.Context, account domain.Account) (domain.Account, error) {
	if err := tx.fail("Persist", account.ID); err != nil {
		return domain.Account{}, err
	}

	if _, ok := tx.held[account.ID]; !ok {
		return domain.Account{}, errorspkg.ErrInternal
	}

	if account.Balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	account.UpdatedAt = time.Now()
	tx.staged[account.ID] = account

	return account, nil
}

func (tx *memTx) AppendTransaction(_ context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	if err := tx.fail("AppendTransaction", arg.AccountID); err != nil {
		return domain.Transaction{}, err
	}

	tx.store.mu.Lock()
	id := tx.store.id()
	tx.store.mu.Unlock()

	t := domain.Transaction{
		ID:            id,
		AccountID:     arg.AccountID,
		AccountNumber: arg.AccountNumber,
		Type:          arg.Type,
		Amount:        arg.Amount,
		Details:       arg.Details,
		CreatedAt:     time.Now(),
	}
	tx.appended = append(tx.appended, t)

	return t, nil
}

func (tx *memTx) DeleteAccount(_ context.Context, id int64) error {
	if err := tx.fail("DeleteAccount", id); err != nil {
		return err
	}

	if _, ok := tx.held[id]; !ok {
		return errorspkg.ErrInternal
	}

	delete(tx.staged, id)
	tx.deletedAccounts[id] = struct{}{}

	return nil
}

func (tx *memTx) DeleteCustomer(_ context.Context, id int64) error {
	if err := tx.fail("DeleteCustomer", id); err != nil {
		return err
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	if _, ok := tx.store.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}

	for accID, a := range tx.store.accounts {
		if _, deleted := tx.deletedAccounts[accID]; a.CustomerID == id && !deleted {
			// Mirrors accounts_customer_id_fkey.
			return domain.ErrCustomerHasAccounts
		}
	}

	tx.deletedCustomers[id] = struct{}{}

	return nil
}
