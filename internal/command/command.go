// Package command holds the write side of the ledger: every state change
// enters through one of these services.
package command

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/models"
)

// Publisher emits domain events after a change has committed.
type Publisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// IDGenerator issues transaction ids.
type IDGenerator interface {
	Next() int64
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// validateAmount accepts strictly positive amounts with at most two decimal
// places, up to models.MaxAmount.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) || amount.GreaterThan(models.MaxAmount) {
		return models.ErrInvalidAmount
	}
	return nil
}

// credit adds amount to a locked account unless the balance would leave the
// storable range.
func credit(account *models.Account, amount decimal.Decimal) error {
	balance := account.Balance.Add(amount)
	if balance.GreaterThan(models.MaxAmount) {
		return models.ErrBalanceLimit
	}
	account.Balance = balance
	return nil
}

// checkOwner passes when no requester is given or the requester owns the account.
func checkOwner(account *models.Account, requestingCustomerID string) error {
	if requestingCustomerID != "" && account.CustomerID != requestingCustomerID {
		return models.ErrForbidden
	}
	return nil
}

func accountNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.ErrAccountNotFound
	}
	return err
}

func publish(ctx context.Context, p Publisher, stream, eventType string, data any) {
	if err := p.Publish(ctx, stream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
