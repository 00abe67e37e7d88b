package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/eaglebank/ledger-service/shared/models"
)

const accountColumns = `id, account_number, customer_id, kind, balance, active, created_at, updated_at`

const transactionColumns = `id, account_id, kind, amount, description, recipient_account_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLLedgerStore keeps the ledger in PostgreSQL or SQLite.
type SQLLedgerStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLLedgerStore(db *sql.DB, dialect Dialect) *SQLLedgerStore {
	return &SQLLedgerStore{db: db, dialect: dialect}
}

func (s *SQLLedgerStore) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	ltx := &sqlLedgerTx{tx: tx, dialect: s.dialect}
	if err := fn(ltx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("Ledger rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func (s *SQLLedgerStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := s.dialect.rebind(`
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	_, err := s.db.ExecContext(ctx, query,
		account.ID, account.AccountNumber, account.CustomerID, string(account.Kind),
		account.Balance, account.Active, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if s.dialect.isUnique(err) {
			return models.ErrDuplicateAccountNumber
		}
		return unavailable("create account", err)
	}
	return nil
}

func (s *SQLLedgerStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return getAccount(ctx, s.db, s.dialect, "id", id, "")
}

func (s *SQLLedgerStore) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	return getAccount(ctx, s.db, s.dialect, "account_number", number, "")
}

func (s *SQLLedgerStore) ListAccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	query := s.dialect.rebind(`
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE customer_id = $1
		ORDER BY created_at, id
	`)
	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, unavailable("list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, unavailable("scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list accounts", err)
	}
	return accounts, nil
}

func (s *SQLLedgerStore) CountAccountsByCustomer(ctx context.Context, customerID string) (int, error) {
	query := s.dialect.rebind(`SELECT COUNT(*) FROM accounts WHERE customer_id = $1`)
	var n int
	if err := s.db.QueryRowContext(ctx, query, customerID).Scan(&n); err != nil {
		return 0, unavailable("count accounts", err)
	}
	return n, nil
}

func (s *SQLLedgerStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := s.dialect.rebind(`SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`)
	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get transaction", err)
	}
	return txn, nil
}

func (s *SQLLedgerStore) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	query := s.dialect.rebind(`
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 OR recipient_account_id = $1
		ORDER BY created_at DESC, id DESC
	`)
	return queryTransactions(ctx, s.db, query, accountID)
}

func (s *SQLLedgerStore) RecentTransactions(ctx context.Context, accountIDs []string, limit int) ([]models.Transaction, error) {
	if len(accountIDs) == 0 || limit <= 0 {
		return []models.Transaction{}, nil
	}
	placeholders := make([]string, len(accountIDs))
	args := make([]any, 0, len(accountIDs)+1)
	for i, id := range accountIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	in := strings.Join(placeholders, ", ")
	args = append(args, limit)

	query := s.dialect.rebind(fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE account_id IN (%s) OR recipient_account_id IN (%s)
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, transactionColumns, in, in, len(args)))
	return queryTransactions(ctx, s.db, query, args...)
}

// sqlLedgerTx is not safe for concurrent use.
type sqlLedgerTx struct {
	tx      *sql.Tx
	dialect Dialect
	locked  map[string]bool
}

func (t *sqlLedgerTx) LockAccounts(ctx context.Context, ids ...string) (map[string]*models.Account, error) {
	if t.locked != nil {
		return nil, errors.New("accounts already locked in this transaction")
	}
	t.locked = make(map[string]bool)

	accounts := make(map[string]*models.Account, len(ids))
	for _, id := range sortedUnique(ids) {
		account, err := getAccount(ctx, t.tx, t.dialect, "id", id, t.dialect.lockSuffix)
		if err != nil {
			return nil, err
		}
		t.locked[id] = true
		accounts[id] = account
	}
	return accounts, nil
}

func (t *sqlLedgerTx) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	return getAccount(ctx, t.tx, t.dialect, "account_number", number, "")
}

func (t *sqlLedgerTx) SaveAccount(ctx context.Context, account *models.Account) error {
	if !t.locked[account.ID] {
		return fmt.Errorf("account %s is not locked in this transaction", account.ID)
	}
	query := t.dialect.rebind(`
		UPDATE accounts
		SET balance = $1, active = $2, updated_at = $3
		WHERE id = $4
	`)
	if _, err := t.tx.ExecContext(ctx, query, account.Balance, account.Active, account.UpdatedAt, account.ID); err != nil {
		return unavailable("save account", err)
	}
	return nil
}

func (t *sqlLedgerTx) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	query := t.dialect.rebind(`
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	_, err := t.tx.ExecContext(ctx, query,
		txn.ID, txn.AccountID, string(txn.Kind), txn.Amount,
		nullString(txn.Description), nullString(txn.RecipientAccountID), txn.CreatedAt,
	)
	if err != nil {
		return unavailable("append transaction", err)
	}
	return nil
}

func getAccount(ctx context.Context, q queryer, dialect Dialect, column, value, suffix string) (*models.Account, error) {
	query := dialect.rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1` + suffix)
	account, err := scanAccount(q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get account", err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.AccountNumber, &account.CustomerID, &account.Kind,
		&account.Balance, &account.Active, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	account.UpdatedAt = account.UpdatedAt.UTC()
	return &account, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var description, recipient sql.NullString
	err := row.Scan(
		&txn.ID, &txn.AccountID, &txn.Kind, &txn.Amount,
		&description, &recipient, &txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.Description = description.String
	txn.RecipientAccountID = recipient.String
	txn.CreatedAt = txn.CreatedAt.UTC()
	return &txn, nil
}

func queryTransactions(ctx context.Context, q queryer, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, unavailable("scan transaction", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list transactions", err)
	}
	return txns, nil
}
