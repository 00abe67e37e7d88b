package query

import (
	"context"
	"errors"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

type CustomerQueryService struct {
	customers repository.CustomerRepository
}

func NewCustomerQueryService(customers repository.CustomerRepository) *CustomerQueryService {
	return &CustomerQueryService{customers: customers}
}

func (s *CustomerQueryService) GetCustomer(ctx context.Context, q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
	customer, err := s.customers.GetByID(ctx, q.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return models.CustomerToView(customer), nil
}
