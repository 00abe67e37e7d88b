package command

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
)

const maxLoanMonths = 480

type LoanCommandService struct {
	loans        repository.LoanRepository
	customers    repository.CustomerRepository
	publisher    Publisher
	interestRate decimal.Decimal
}

func NewLoanCommandService(
	loans repository.LoanRepository,
	customers repository.CustomerRepository,
	publisher Publisher,
	interestRate decimal.Decimal,
) *LoanCommandService {
	return &LoanCommandService{
		loans:        loans,
		customers:    customers,
		publisher:    publisher,
		interestRate: interestRate,
	}
}

// ApplyLoan registers an unapproved loan at the configured interest rate.
func (s *LoanCommandService) ApplyLoan(ctx context.Context, cmd cqrs.ApplyLoanCommand) (*models.Loan, error) {
	kind := models.LoanKind(cmd.LoanType)
	if !kind.Valid() || cmd.DurationMonths < 1 || cmd.DurationMonths > maxLoanMonths {
		return nil, models.ErrInvalidLoan
	}
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	if _, err := s.customers.GetByID(ctx, cmd.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}

	loan := &models.Loan{
		ID:             utils.NewID(),
		CustomerID:     cmd.CustomerID,
		Kind:           kind,
		Amount:         cmd.Amount,
		InterestRate:   s.interestRate,
		DurationMonths: cmd.DurationMonths,
		CreatedAt:      now(),
	}
	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.LedgerEventsStream, events.LoanApplied, events.LoanAppliedEvent{
		LoanID:     loan.ID,
		CustomerID: loan.CustomerID,
		LoanType:   string(loan.Kind),
		Amount:     models.Money(loan.Amount),
	})
	return loan, nil
}

// ApproveLoan marks a loan approved. Approving it again returns the stored
// loan unchanged.
func (s *LoanCommandService) ApproveLoan(ctx context.Context, cmd cqrs.ApproveLoanCommand) (*models.Loan, error) {
	existing, err := s.loans.GetByID(ctx, cmd.LoanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	if existing.Approved {
		return existing, nil
	}

	at := now()
	loan, err := s.loans.Approve(ctx, cmd.LoanID, at)
	if err != nil {
		return nil, err
	}

	if loan.ApprovedAt != nil && loan.ApprovedAt.Equal(at) {
		publish(ctx, s.publisher, events.LedgerEventsStream, events.LoanApproved, events.LoanApprovedEvent{
			LoanID:     loan.ID,
			CustomerID: loan.CustomerID,
			ApprovedAt: at,
		})
	}
	return loan, nil
}
