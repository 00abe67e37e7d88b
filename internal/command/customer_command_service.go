package command

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
)

// CustomerCommandService maintains customer profiles and onboards new users.
type CustomerCommandService struct {
	customers repository.CustomerRepository
	store     repository.LedgerStore
	accounts  *AccountCommandService
	policy    config.PolicyConfig
}

func NewCustomerCommandService(
	customers repository.CustomerRepository,
	store repository.LedgerStore,
	accounts *AccountCommandService,
	policy config.PolicyConfig,
) *CustomerCommandService {
	return &CustomerCommandService{
		customers: customers,
		store:     store,
		accounts:  accounts,
		policy:    policy,
	}
}

// EnsureCustomerProfile creates the profile with default details unless it
// already exists, and reports whether it was created.
func (s *CustomerCommandService) EnsureCustomerProfile(ctx context.Context, cmd cqrs.EnsureCustomerProfileCommand) (*models.Customer, bool, error) {
	if cmd.CustomerID == "" {
		return nil, false, fmt.Errorf("customer id is required")
	}
	ts := now()
	return s.customers.Ensure(ctx, &models.Customer{
		ID:          cmd.CustomerID,
		PhoneNumber: s.policy.DefaultPhoneNumber,
		Address:     s.policy.DefaultAddress,
		DateOfBirth: s.policy.DefaultDateOfBirth,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
}

// UpdateCustomerProfile overwrites the fields given in cmd; empty fields are
// left as they are.
func (s *CustomerCommandService) UpdateCustomerProfile(ctx context.Context, cmd cqrs.UpdateCustomerProfileCommand) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, cmd.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	if cmd.PhoneNumber != "" {
		customer.PhoneNumber = cmd.PhoneNumber
	}
	if cmd.Address != "" {
		customer.Address = cmd.Address
	}
	if cmd.DateOfBirth != "" {
		customer.DateOfBirth = cmd.DateOfBirth
	}
	customer.UpdatedAt = now()

	if err := s.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// HandleUserEvent onboards users announced on the user stream: it ensures
// the profile and opens the default account when the customer has none.
// Redelivery of the same event leaves a single account.
func (s *CustomerCommandService) HandleUserEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.UserCreated {
		return nil
	}
	data, err := events.DecodeData[events.UserCreatedEvent](event)
	if err != nil {
		return err
	}
	if data.UserID == "" {
		// Nothing to retry; let the message be acknowledged.
		log.Printf("Dropping %s event without user id", event.Type)
		return nil
	}

	if _, _, err := s.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: data.UserID}); err != nil {
		return fmt.Errorf("failed to ensure profile for %s: %w", data.UserID, err)
	}

	n, err := s.store.CountAccountsByCustomer(ctx, data.UserID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Customer %s already has %d account(s), skipping default account", data.UserID, n)
		return nil
	}

	account, err := s.accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{
		CustomerID:  data.UserID,
		AccountType: s.policy.DefaultAccountKind,
	})
	if err != nil {
		return fmt.Errorf("failed to open default account for %s: %w", data.UserID, err)
	}
	log.Printf("Onboarded customer %s with %s account %s", data.UserID, account.Kind, account.AccountNumber)
	return nil
}
