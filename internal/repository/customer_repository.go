package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/eaglebank/ledger-service/shared/models"
)

const customerColumns = `id, phone_number, address, date_of_birth, created_at, updated_at`

type SQLCustomerRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLCustomerRepository(db *sql.DB, dialect Dialect) *SQLCustomerRepository {
	return &SQLCustomerRepository{db: db, dialect: dialect}
}

func (r *SQLCustomerRepository) Ensure(ctx context.Context, c *models.Customer) (*models.Customer, bool, error) {
	query := r.dialect.rebind(`
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`)
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.PhoneNumber, c.Address, c.DateOfBirth, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, false, unavailable("ensure customer", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, unavailable("ensure customer", err)
	}

	stored, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected > 0, nil
}

func (r *SQLCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := r.dialect.rebind(`SELECT ` + customerColumns + ` FROM customers WHERE id = $1`)
	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.PhoneNumber, &c.Address, &c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get customer", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (r *SQLCustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	query := r.dialect.rebind(`
		UPDATE customers
		SET phone_number = $1, address = $2, date_of_birth = $3, updated_at = $4
		WHERE id = $5
	`)
	res, err := r.db.ExecContext(ctx, query, c.PhoneNumber, c.Address, c.DateOfBirth, c.UpdatedAt, c.ID)
	if err != nil {
		return unavailable("update customer", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("update customer", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
}

func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{customers: make(map[string]models.Customer)}
}

func (r *MemoryCustomerRepository) Ensure(ctx context.Context, c *models.Customer) (*models.Customer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.customers[c.ID]; ok {
		return &existing, false, nil
	}
	r.customers[c.ID] = *c
	stored := *c
	return &stored, true, nil
}

func (r *MemoryCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.customers[c.ID]
	if !ok {
		return ErrNotFound
	}
	existing.PhoneNumber = c.PhoneNumber
	existing.Address = c.Address
	existing.DateOfBirth = c.DateOfBirth
	existing.UpdatedAt = c.UpdatedAt
	r.customers[c.ID] = existing
	return nil
}
