package query

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

type AccountQueryService struct {
	store     repository.LedgerStore
	customers repository.CustomerRepository
	txns      *repository.TransactionReadRepository
	recent    int
}

func NewAccountQueryService(
	store repository.LedgerStore,
	customers repository.CustomerRepository,
	txns *repository.TransactionReadRepository,
	recent int,
) *AccountQueryService {
	return &AccountQueryService{store: store, customers: customers, txns: txns, recent: recent}
}

// GetAccount fetches a single account view and enforces ownership.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	account, err := ownedAccount(ctx, s.store, q.AccountID, q.RequestingCustomerID)
	if err != nil {
		return nil, err
	}
	return models.AccountToView(account), nil
}

// ListAccounts returns every account of the customer, inactive ones included.
func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	accounts, err := s.store.ListAccountsByCustomer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, *models.AccountToView(&accounts[i]))
	}
	return views, nil
}

func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (decimal.Decimal, error) {
	account, err := ownedAccount(ctx, s.store, q.AccountID, q.RequestingCustomerID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// TotalBalance sums the balances of the customer's active accounts.
func (s *AccountQueryService) TotalBalance(ctx context.Context, q cqrs.TotalBalanceQuery) (decimal.Decimal, error) {
	accounts, err := s.store.ListAccountsByCustomer(ctx, q.CustomerID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumActive(accounts), nil
}

// Reconcile recomputes the balance from the account's full history.
func (s *AccountQueryService) Reconcile(ctx context.Context, q cqrs.ReconcileAccountQuery) (*models.ReconciliationView, error) {
	account, err := ownedAccount(ctx, s.store, q.AccountID, q.RequestingCustomerID)
	if err != nil {
		return nil, err
	}
	history, err := s.txns.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	ledger := decimal.Zero
	for i := range history {
		ledger = ledger.Add(history[i].EffectOn(account.ID))
	}
	return &models.ReconciliationView{
		AccountID:        account.ID,
		Balance:          models.Money(account.Balance),
		LedgerBalance:    models.Money(ledger),
		TransactionCount: len(history),
		Balanced:         ledger.Equal(account.Balance),
	}, nil
}

// Dashboard summarises a customer: active accounts, their total and the most
// recent transactions across them.
func (s *AccountQueryService) Dashboard(ctx context.Context, q cqrs.DashboardQuery) (*models.DashboardView, error) {
	if _, err := s.customers.GetByID(ctx, q.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}

	accounts, err := s.store.ListAccountsByCustomer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}
	active := make([]models.AccountView, 0, len(accounts))
	ids := make([]string, 0, len(accounts))
	for i := range accounts {
		if !accounts[i].Active {
			continue
		}
		active = append(active, *models.AccountToView(&accounts[i]))
		ids = append(ids, accounts[i].ID)
	}

	recent, err := s.txns.Recent(ctx, ids, s.recent)
	if err != nil {
		return nil, err
	}
	return &models.DashboardView{
		CustomerID:         q.CustomerID,
		Accounts:           active,
		TotalBalance:       models.Money(sumActive(accounts)),
		RecentTransactions: viewsFor(recent, ids...),
	}, nil
}

func sumActive(accounts []models.Account) decimal.Decimal {
	total := decimal.Zero
	for i := range accounts {
		if accounts[i].Active {
			total = total.Add(accounts[i].Balance)
		}
	}
	return total
}
