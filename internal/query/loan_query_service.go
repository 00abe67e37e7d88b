package query

import (
	"context"
	"errors"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

type LoanQueryService struct {
	loans repository.LoanRepository
}

func NewLoanQueryService(loans repository.LoanRepository) *LoanQueryService {
	return &LoanQueryService{loans: loans}
}

func (s *LoanQueryService) GetLoan(ctx context.Context, q cqrs.GetLoanQuery) (*models.LoanView, error) {
	loan, err := s.loans.GetByID(ctx, q.LoanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	if q.RequestingCustomerID != "" && loan.CustomerID != q.RequestingCustomerID {
		return nil, models.ErrForbidden
	}
	return models.LoanToView(loan), nil
}

// ListLoans returns the customer's loans, newest first.
func (s *LoanQueryService) ListLoans(ctx context.Context, q cqrs.ListLoansQuery) ([]models.LoanView, error) {
	loans, err := s.loans.ListByCustomer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.LoanView, 0, len(loans))
	for i := range loans {
		views = append(views, *models.LoanToView(&loans[i]))
	}
	return views, nil
}
