package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eaglebank/ledger-service/shared/models"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("record not found")

// LedgerStore is the durable home of accounts and their transactions.
// It does not enforce balance rules; it guarantees that everything written
// through one WithinTx call becomes visible together or not at all.
type LedgerStore interface {
	// WithinTx runs fn inside one atomic unit. A non-nil error from fn rolls
	// back every write made through tx. Writes are durable once WithinTx
	// returns nil.
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// CreateAccount inserts a new account. A taken account number yields
	// models.ErrDuplicateAccountNumber.
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*models.Account, error)
	ListAccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error)
	CountAccountsByCustomer(ctx context.Context, customerID string) (int, error)

	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	// ListTransactions returns every record affecting accountID, including
	// transfers it received, newest first.
	ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error)
	// RecentTransactions merges the newest limit records affecting any of
	// accountIDs.
	RecentTransactions(ctx context.Context, accountIDs []string, limit int) ([]models.Transaction, error)
}

// LedgerTx is the write view handed to WithinTx callbacks.
type LedgerTx interface {
	// LockAccounts takes exclusive access to the given accounts, in ascending
	// id order, for the rest of the transaction and returns their current
	// state. It may be called once per transaction.
	LockAccounts(ctx context.Context, ids ...string) (map[string]*models.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*models.Account, error)
	// SaveAccount persists balance, active flag and update time of an
	// account previously locked in this transaction.
	SaveAccount(ctx context.Context, account *models.Account) error
	AppendTransaction(ctx context.Context, txn *models.Transaction) error
}

type CustomerRepository interface {
	// Ensure inserts c unless a customer with the same id exists, and returns
	// the stored row and whether it was created.
	Ensure(ctx context.Context, c *models.Customer) (*models.Customer, bool, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id string) (*models.Loan, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Loan, error)
	// Approve flips the approval flag once; approving an approved loan
	// leaves it untouched.
	Approve(ctx context.Context, id string, at time.Time) (*models.Loan, error)
}

// sortedUnique returns ids in ascending order without repeats. Every store
// acquires account locks in this order.
func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// newestFirst orders records the way every history read returns them.
func newestFirst(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].ID > txns[j].ID
	})
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}

func sortAccounts(accounts []models.Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})
}
