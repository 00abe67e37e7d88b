package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eaglebank/ledger-service/shared/models"
)

// MemoryLedgerStore is a process-local LedgerStore. Accounts are locked
// individually so operations on disjoint accounts run in parallel; writes
// staged in a transaction are applied together on commit.
type MemoryLedgerStore struct {
	mu           sync.RWMutex
	accounts     map[string]models.Account
	byNumber     map[string]string
	transactions []models.Transaction
	byTxnID      map[int64]int

	lockMu sync.Mutex
	locks  map[string]chan struct{}
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts: make(map[string]models.Account),
		byNumber: make(map[string]string),
		byTxnID:  make(map[int64]int),
		locks:    make(map[string]chan struct{}),
	}
}

func (s *MemoryLedgerStore) accountLock(id string) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

func (s *MemoryLedgerStore) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return unavailable("begin transaction", err)
	}
	tx := &memoryTx{store: s}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryLedgerStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byNumber[account.AccountNumber]; taken {
		return models.ErrDuplicateAccountNumber
	}
	if _, taken := s.accounts[account.ID]; taken {
		return fmt.Errorf("%w: account %s already exists", models.ErrStoreUnavailable, account.ID)
	}
	s.accounts[account.ID] = *account
	s.byNumber[account.AccountNumber] = account.ID
	return nil
}

func (s *MemoryLedgerStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (s *MemoryLedgerStore) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	s.mu.RLock()
	id, ok := s.byNumber[number]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetAccount(ctx, id)
}

func (s *MemoryLedgerStore) ListAccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := []models.Account{}
	for _, account := range s.accounts {
		if account.CustomerID == customerID {
			accounts = append(accounts, account)
		}
	}
	sortAccounts(accounts)
	return accounts, nil
}

func (s *MemoryLedgerStore) CountAccountsByCustomer(ctx context.Context, customerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, account := range s.accounts {
		if account.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryLedgerStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byTxnID[id]
	if !ok {
		return nil, ErrNotFound
	}
	txn := s.transactions[i]
	return &txn, nil
}

func (s *MemoryLedgerStore) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return s.collect([]string{accountID}, 0), nil
}

func (s *MemoryLedgerStore) RecentTransactions(ctx context.Context, accountIDs []string, limit int) ([]models.Transaction, error) {
	if len(accountIDs) == 0 || limit <= 0 {
		return []models.Transaction{}, nil
	}
	return s.collect(accountIDs, limit), nil
}

// collect returns the records touching any of accountIDs, newest first,
// truncated to limit when limit > 0.
func (s *MemoryLedgerStore) collect(accountIDs []string, limit int) []models.Transaction {
	wanted := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	txns := []models.Transaction{}
	for _, txn := range s.transactions {
		if wanted[txn.AccountID] || (txn.RecipientAccountID != "" && wanted[txn.RecipientAccountID]) {
			txns = append(txns, txn)
		}
	}
	s.mu.RUnlock()

	newestFirst(txns)
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns
}

type memoryTx struct {
	store   *MemoryLedgerStore
	held    []chan struct{}
	locked  map[string]*models.Account
	dirty   map[string]bool
	appends []models.Transaction
}

func (t *memoryTx) LockAccounts(ctx context.Context, ids ...string) (map[string]*models.Account, error) {
	if t.locked != nil {
		return nil, errors.New("accounts already locked in this transaction")
	}
	t.locked = make(map[string]*models.Account)
	t.dirty = make(map[string]bool)

	sorted := sortedUnique(ids)
	t.store.mu.RLock()
	for _, id := range sorted {
		if _, ok := t.store.accounts[id]; !ok {
			t.store.mu.RUnlock()
			return nil, ErrNotFound
		}
	}
	t.store.mu.RUnlock()

	for _, id := range sorted {
		l := t.store.accountLock(id)
		select {
		case l <- struct{}{}:
			t.held = append(t.held, l)
		case <-ctx.Done():
			return nil, unavailable("lock account", ctx.Err())
		}
	}

	// Read only after every lock is held so the state cannot move underneath.
	out := make(map[string]*models.Account, len(sorted))
	t.store.mu.RLock()
	for _, id := range sorted {
		account := t.store.accounts[id]
		t.locked[id] = &account
		copied := account
		out[id] = &copied
	}
	t.store.mu.RUnlock()
	return out, nil
}

func (t *memoryTx) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	account, err := t.store.GetAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if staged, ok := t.locked[account.ID]; ok {
		copied := *staged
		return &copied, nil
	}
	return account, nil
}

func (t *memoryTx) SaveAccount(ctx context.Context, account *models.Account) error {
	staged, ok := t.locked[account.ID]
	if !ok {
		return fmt.Errorf("account %s is not locked in this transaction", account.ID)
	}
	staged.Balance = account.Balance
	staged.Active = account.Active
	staged.UpdatedAt = account.UpdatedAt
	t.dirty[account.ID] = true
	return nil
}

func (t *memoryTx) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	t.appends = append(t.appends, *txn)
	return nil
}

func (t *memoryTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range t.dirty {
		s.accounts[id] = *t.locked[id]
	}
	for _, txn := range t.appends {
		s.byTxnID[txn.ID] = len(s.transactions)
		s.transactions = append(s.transactions, txn)
	}
}

func (t *memoryTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.held[i]
	}
	t.held = nil
}
