package query

import (
	"context"
	"errors"
	"strconv"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

// TransactionQueryService serves transaction reads. Ownership is checked on
// the account before any history is returned.
type TransactionQueryService struct {
	store    repository.LedgerStore
	readRepo *repository.TransactionReadRepository
}

func NewTransactionQueryService(store repository.LedgerStore, readRepo *repository.TransactionReadRepository) *TransactionQueryService {
	return &TransactionQueryService{store: store, readRepo: readRepo}
}

// GetTransaction returns one record as seen from q.AccountID. Records that do
// not touch that account are reported as not found.
func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	id, err := strconv.ParseInt(q.TransactionID, 10, 64)
	if err != nil {
		return nil, models.ErrTransactionNotFound
	}
	account, err := ownedAccount(ctx, s.store, q.AccountID, q.RequestingCustomerID)
	if err != nil {
		return nil, err
	}

	txn, err := s.readRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if txn.AccountID != account.ID && txn.RecipientAccountID != account.ID {
		return nil, models.ErrTransactionNotFound
	}
	return models.TransactionToView(txn, account.ID), nil
}

// ListTransactions returns the account history newest first, received
// transfers included.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error) {
	account, err := ownedAccount(ctx, s.store, q.AccountID, q.RequestingCustomerID)
	if err != nil {
		return nil, err
	}
	txns, err := s.readRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return viewsFor(txns, account.ID), nil
}
