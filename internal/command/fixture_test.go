package command

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

type recordedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type sequenceIDs struct {
	n atomic.Int64
}

func (g *sequenceIDs) Next() int64 {
	return g.n.Add(1)
}

// faultyStore fails every AppendTransaction after the account writes were
// staged, to prove nothing partial survives.
type faultyStore struct {
	repository.LedgerStore
	err error
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	return s.LedgerStore.WithinTx(ctx, func(tx repository.LedgerTx) error {
		return fn(&faultyTx{LedgerTx: tx, err: s.err})
	})
}

type faultyTx struct {
	repository.LedgerTx
	err error
}

func (t *faultyTx) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	return t.err
}

type fixture struct {
	store     repository.LedgerStore
	customers repository.CustomerRepository
	loans     repository.LoanRepository
	publisher *recordingPublisher

	txns        *TransactionCommandService
	accounts    *AccountCommandService
	customerSvc *CustomerCommandService
	loanSvc     *LoanCommandService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, repository.NewMemoryLedgerStore(), repository.NewMemoryCustomerRepository(), repository.NewMemoryLoanRepository())
}

// newSQLiteFixture runs the services on a temp-file SQLite database.
func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.Migrate(ctx, db, repository.SQLite); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return newFixtureOn(t,
		repository.NewSQLLedgerStore(db, repository.SQLite),
		repository.NewSQLCustomerRepository(db, repository.SQLite),
		repository.NewSQLLoanRepository(db, repository.SQLite),
	)
}

func newFixtureOn(t *testing.T, store repository.LedgerStore, customers repository.CustomerRepository, loans repository.LoanRepository) *fixture {
	t.Helper()
	policy := config.Defaults().Policy
	rate, err := policy.InterestRate()
	if err != nil {
		t.Fatalf("InterestRate() error = %v", err)
	}

	f := &fixture{
		store:     store,
		customers: customers,
		loans:     loans,
		publisher: &recordingPublisher{},
	}
	readRepo := repository.NewTransactionReadRepository(f.store, nil)
	f.txns = NewTransactionCommandService(f.store, readRepo, &sequenceIDs{}, f.publisher)
	f.accounts = NewAccountCommandService(f.store, f.customers, f.publisher, policy)
	f.customerSvc = NewCustomerCommandService(f.customers, f.store, f.accounts, policy)
	f.loanSvc = NewLoanCommandService(f.loans, f.customers, f.publisher, rate)
	return f
}

// openAccount onboards customerID if needed and opens an account funded
// with an initial deposit of balance.
func (f *fixture) openAccount(t *testing.T, customerID, balance string) *models.Account {
	t.Helper()
	ctx := context.Background()
	if _, _, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: customerID}); err != nil {
		t.Fatalf("EnsureCustomerProfile() error = %v", err)
	}
	account, err := f.accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{
		CustomerID:  customerID,
		AccountType: string(models.AccountChecking),
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if amount := dec(balance); amount.IsPositive() {
		if _, err := f.txns.Deposit(ctx, cqrs.DepositCommand{AccountID: account.ID, Amount: amount}); err != nil {
			t.Fatalf("Deposit() error = %v", err)
		}
	}
	return account
}

func (f *fixture) balance(t *testing.T, accountID string) string {
	t.Helper()
	account, err := f.store.GetAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	return models.Money(account.Balance)
}

// ledgerBalance recomputes a balance from the account's history.
func (f *fixture) ledgerBalance(t *testing.T, accountID string) string {
	t.Helper()
	history, err := f.store.ListTransactions(context.Background(), accountID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	sum := decimal.Zero
	for i := range history {
		sum = sum.Add(history[i].EffectOn(accountID))
	}
	return models.Money(sum)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
