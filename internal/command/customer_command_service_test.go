package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
)

func userCreated(userID string) events.Event {
	return events.Event{
		Type:      events.UserCreated,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"userId": userID,
			"email":  userID + "@example.com",
			"name":   "Test User",
		},
	}
}

func TestEnsureCustomerProfileUsesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, created, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: "alice"})
	if err != nil || !created {
		t.Fatalf("EnsureCustomerProfile() = created %v, err %v", created, err)
	}
	if customer.PhoneNumber != "Not provided" || customer.Address != "Not provided" || customer.DateOfBirth != "2000-01-01" {
		t.Errorf("EnsureCustomerProfile() = %+v", customer)
	}

	_, created, err = f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: "alice"})
	if err != nil || created {
		t.Errorf("second EnsureCustomerProfile() = created %v, err %v", created, err)
	}

	if _, _, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{}); err == nil {
		t.Error("EnsureCustomerProfile() without id succeeded")
	}
}

func TestUpdateCustomerProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: "alice"}); err != nil {
		t.Fatalf("EnsureCustomerProfile() error = %v", err)
	}

	updated, err := f.customerSvc.UpdateCustomerProfile(ctx, cqrs.UpdateCustomerProfileCommand{
		CustomerID: "alice",
		Address:    "1 River Road",
	})
	if err != nil {
		t.Fatalf("UpdateCustomerProfile() error = %v", err)
	}
	if updated.Address != "1 River Road" || updated.PhoneNumber != "Not provided" {
		t.Errorf("UpdateCustomerProfile() = %+v", updated)
	}

	_, err = f.customerSvc.UpdateCustomerProfile(ctx, cqrs.UpdateCustomerProfileCommand{CustomerID: "nobody", Address: "x"})
	if !errors.Is(err, models.ErrCustomerNotFound) {
		t.Errorf("UpdateCustomerProfile(nobody) error = %v, want ErrCustomerNotFound", err)
	}
}

func TestHandleUserEventOnboardsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.customerSvc.HandleUserEvent(ctx, userCreated("dave")); err != nil {
			t.Fatalf("HandleUserEvent() error = %v", err)
		}
	}

	accounts, err := f.store.ListAccountsByCustomer(ctx, "dave")
	if err != nil {
		t.Fatalf("ListAccountsByCustomer() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("dave has %d accounts, want 1", len(accounts))
	}
	if accounts[0].Kind != models.AccountSavings || !accounts[0].Balance.IsZero() {
		t.Errorf("default account = %+v", accounts[0])
	}
	if _, err := f.customers.GetByID(ctx, "dave"); err != nil {
		t.Errorf("profile not created: %v", err)
	}
}

func TestHandleUserEventIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.customerSvc.HandleUserEvent(ctx, events.Event{Type: "user.deleted", Data: map[string]any{"userId": "erin"}}); err != nil {
		t.Errorf("HandleUserEvent(user.deleted) error = %v", err)
	}
	if err := f.customerSvc.HandleUserEvent(ctx, userCreated("")); err != nil {
		t.Errorf("HandleUserEvent(no id) error = %v", err)
	}
	if err := f.customerSvc.HandleUserEvent(ctx, events.Event{Type: events.UserCreated, Data: "garbage"}); err == nil {
		t.Error("HandleUserEvent(garbage) succeeded")
	}
	if n, _ := f.store.CountAccountsByCustomer(ctx, "erin"); n != 0 {
		t.Errorf("erin has %d accounts, want 0", n)
	}
}
