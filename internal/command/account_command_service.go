package command

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
)

// AccountCommandService opens and deactivates accounts. Accounts are never
// deleted.
type AccountCommandService struct {
	store     repository.LedgerStore
	customers repository.CustomerRepository
	publisher Publisher

	generateNumber func() (string, error)
	attempts       int
}

func NewAccountCommandService(
	store repository.LedgerStore,
	customers repository.CustomerRepository,
	publisher Publisher,
	policy config.PolicyConfig,
) *AccountCommandService {
	length := policy.AccountNumberLength
	return &AccountCommandService{
		store:     store,
		customers: customers,
		publisher: publisher,
		generateNumber: func() (string, error) {
			return utils.GenerateAccountNumber(length)
		},
		attempts: policy.AccountNumberAttempts,
	}
}

// CreateAccount opens a zero-balance account for an existing customer. A
// colliding account number is regenerated until the attempt limit.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	kind := models.AccountKind(cmd.AccountType)
	if !kind.Valid() {
		return nil, models.ErrInvalidAccountKind
	}
	if _, err := s.customers.GetByID(ctx, cmd.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.generateNumber()
		if err != nil {
			return nil, err
		}
		ts := now()
		account := &models.Account{
			ID:            utils.NewID(),
			AccountNumber: number,
			CustomerID:    cmd.CustomerID,
			Kind:          kind,
			Balance:       decimal.Zero,
			Active:        true,
			CreatedAt:     ts,
			UpdatedAt:     ts,
		}

		err = s.store.CreateAccount(ctx, account)
		if errors.Is(err, models.ErrDuplicateAccountNumber) {
			log.Printf("Account number collision on attempt %d/%d, regenerating", attempt, s.attempts)
			continue
		}
		if err != nil {
			return nil, err
		}

		publish(ctx, s.publisher, events.LedgerEventsStream, events.AccountCreated, events.AccountCreatedEvent{
			AccountID:     account.ID,
			AccountNumber: account.AccountNumber,
			CustomerID:    account.CustomerID,
			AccountType:   string(account.Kind),
		})
		return account, nil
	}
	return nil, fmt.Errorf("%w: no free number after %d attempts", models.ErrDuplicateAccountNumber, s.attempts)
}

// DeactivateAccount closes an account for new movements. Its history and
// balance stay readable. Deactivating an inactive account is a no-op.
func (s *AccountCommandService) DeactivateAccount(ctx context.Context, cmd cqrs.DeactivateAccountCommand) (*models.Account, error) {
	var account *models.Account
	changed := false
	err := s.store.WithinTx(ctx, func(tx repository.LedgerTx) error {
		locked, err := tx.LockAccounts(ctx, cmd.AccountID)
		if err != nil {
			return accountNotFound(err)
		}
		account = locked[cmd.AccountID]
		if err := checkOwner(account, cmd.RequestingCustomerID); err != nil {
			return err
		}
		if !account.Active {
			return nil
		}
		account.Active = false
		account.UpdatedAt = now()
		changed = true
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		publish(ctx, s.publisher, events.LedgerEventsStream, events.AccountDeactivated, events.AccountDeactivatedEvent{
			AccountID:     account.ID,
			AccountNumber: account.AccountNumber,
			CustomerID:    account.CustomerID,
		})
	}
	return account, nil
}
