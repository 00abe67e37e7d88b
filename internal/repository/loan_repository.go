package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/eaglebank/ledger-service/shared/models"
)

const loanColumns = `id, customer_id, kind, amount, interest_rate, duration_months, approved, approved_at, created_at`

type SQLLoanRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLLoanRepository(db *sql.DB, dialect Dialect) *SQLLoanRepository {
	return &SQLLoanRepository{db: db, dialect: dialect}
}

func (r *SQLLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	query := r.dialect.rebind(`
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	var approvedAt sql.NullTime
	if loan.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *loan.ApprovedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		loan.ID, loan.CustomerID, string(loan.Kind), loan.Amount, loan.InterestRate,
		loan.DurationMonths, loan.Approved, approvedAt, loan.CreatedAt,
	)
	if err != nil {
		return unavailable("create loan", err)
	}
	return nil
}

func (r *SQLLoanRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	query := r.dialect.rebind(`SELECT ` + loanColumns + ` FROM loans WHERE id = $1`)
	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get loan", err)
	}
	return loan, nil
}

func (r *SQLLoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Loan, error) {
	query := r.dialect.rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE customer_id = $1
		ORDER BY created_at DESC, id
	`)
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, unavailable("list loans", err)
	}
	defer rows.Close()

	loans := []models.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, unavailable("scan loan", err)
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list loans", err)
	}
	return loans, nil
}

func (r *SQLLoanRepository) Approve(ctx context.Context, id string, at time.Time) (*models.Loan, error) {
	query := r.dialect.rebind(`
		UPDATE loans
		SET approved = TRUE, approved_at = $1
		WHERE id = $2 AND approved = FALSE
	`)
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return nil, unavailable("approve loan", err)
	}
	return r.GetByID(ctx, id)
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var loan models.Loan
	var approvedAt sql.NullTime
	err := row.Scan(
		&loan.ID, &loan.CustomerID, &loan.Kind, &loan.Amount, &loan.InterestRate,
		&loan.DurationMonths, &loan.Approved, &approvedAt, &loan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		loan.ApprovedAt = &t
	}
	loan.CreatedAt = loan.CreatedAt.UTC()
	return &loan, nil
}

type MemoryLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]models.Loan
}

func NewMemoryLoanRepository() *MemoryLoanRepository {
	return &MemoryLoanRepository{loans: make(map[string]models.Loan)}
}

func (r *MemoryLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[loan.ID] = *loan
	return nil
}

func (r *MemoryLoanRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loan, ok := r.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &loan, nil
}

func (r *MemoryLoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loans := []models.Loan{}
	for _, loan := range r.loans {
		if loan.CustomerID == customerID {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].CreatedAt.After(loans[j].CreatedAt)
		}
		return loans[i].ID < loans[j].ID
	})
	return loans, nil
}

func (r *MemoryLoanRepository) Approve(ctx context.Context, id string, at time.Time) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !loan.Approved {
		loan.Approved = true
		approvedAt := at
		loan.ApprovedAt = &approvedAt
		r.loans[id] = loan
	}
	return &loan, nil
}
