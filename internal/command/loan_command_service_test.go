package command

import (
	"context"
	"errors"
	"testing"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
)

func TestApplyLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: "alice"}); err != nil {
		t.Fatalf("EnsureCustomerProfile() error = %v", err)
	}

	tests := []struct {
		name      string
		cmd       cqrs.ApplyLoanCommand
		wantError error
	}{
		{name: "car loan", cmd: cqrs.ApplyLoanCommand{CustomerID: "alice", LoanType: "car", Amount: dec("15000"), DurationMonths: 48}},
		{name: "unknown type", cmd: cqrs.ApplyLoanCommand{CustomerID: "alice", LoanType: "boat", Amount: dec("10"), DurationMonths: 12}, wantError: models.ErrInvalidLoan},
		{name: "zero duration", cmd: cqrs.ApplyLoanCommand{CustomerID: "alice", LoanType: "home", Amount: dec("10"), DurationMonths: 0}, wantError: models.ErrInvalidLoan},
		{name: "negative amount", cmd: cqrs.ApplyLoanCommand{CustomerID: "alice", LoanType: "home", Amount: dec("-10"), DurationMonths: 12}, wantError: models.ErrInvalidAmount},
		{name: "unknown customer", cmd: cqrs.ApplyLoanCommand{CustomerID: "nobody", LoanType: "personal", Amount: dec("10"), DurationMonths: 12}, wantError: models.ErrCustomerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan, err := f.loanSvc.ApplyLoan(ctx, tt.cmd)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("ApplyLoan() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyLoan() error = %v", err)
			}
			if loan.Approved || loan.ApprovedAt != nil {
				t.Errorf("new loan already approved: %+v", loan)
			}
			if models.Money(loan.InterestRate) != "8.50" {
				t.Errorf("interest rate = %s, want 8.50", models.Money(loan.InterestRate))
			}
		})
	}
}

func TestApproveLoanIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.customerSvc.EnsureCustomerProfile(ctx, cqrs.EnsureCustomerProfileCommand{CustomerID: "alice"}); err != nil {
		t.Fatalf("EnsureCustomerProfile() error = %v", err)
	}
	loan, err := f.loanSvc.ApplyLoan(ctx, cqrs.ApplyLoanCommand{CustomerID: "alice", LoanType: "personal", Amount: dec("500"), DurationMonths: 12})
	if err != nil {
		t.Fatalf("ApplyLoan() error = %v", err)
	}
	f.publisher.reset()

	first, err := f.loanSvc.ApproveLoan(ctx, cqrs.ApproveLoanCommand{LoanID: loan.ID})
	if err != nil {
		t.Fatalf("ApproveLoan() error = %v", err)
	}
	if !first.Approved || first.ApprovedAt == nil {
		t.Fatalf("ApproveLoan() = %+v", first)
	}

	second, err := f.loanSvc.ApproveLoan(ctx, cqrs.ApproveLoanCommand{LoanID: loan.ID})
	if err != nil {
		t.Fatalf("second ApproveLoan() error = %v", err)
	}
	if !second.ApprovedAt.Equal(*first.ApprovedAt) {
		t.Errorf("approval time moved from %v to %v", first.ApprovedAt, second.ApprovedAt)
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != events.LoanApproved {
		t.Errorf("events = %v, want one %s", got, events.LoanApproved)
	}

	if _, err := f.loanSvc.ApproveLoan(ctx, cqrs.ApproveLoanCommand{LoanID: "missing"}); !errors.Is(err, models.ErrLoanNotFound) {
		t.Errorf("ApproveLoan(missing) error = %v, want ErrLoanNotFound", err)
	}
}
