package command

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
)

// TransactionCommandService moves money. Each operation locks the accounts it
// touches, re-validates under the lock and writes balance and history in one
// store transaction.
type TransactionCommandService struct {
	store     repository.LedgerStore
	readRepo  *repository.TransactionReadRepository
	ids       IDGenerator
	publisher Publisher
}

func NewTransactionCommandService(
	store repository.LedgerStore,
	readRepo *repository.TransactionReadRepository,
	ids IDGenerator,
	publisher Publisher,
) *TransactionCommandService {
	return &TransactionCommandService{
		store:     store,
		readRepo:  readRepo,
		ids:       ids,
		publisher: publisher,
	}
}

func (s *TransactionCommandService) Deposit(ctx context.Context, cmd cqrs.DepositCommand) (*models.Transaction, error) {
	return s.applySingle(ctx, cmd.AccountID, cmd.RequestingCustomerID, models.TransactionDeposit, cmd.Amount, cmd.Description)
}

func (s *TransactionCommandService) Withdraw(ctx context.Context, cmd cqrs.WithdrawCommand) (*models.Transaction, error) {
	return s.applySingle(ctx, cmd.AccountID, cmd.RequestingCustomerID, models.TransactionWithdrawal, cmd.Amount, cmd.Description)
}

func (s *TransactionCommandService) applySingle(
	ctx context.Context,
	accountID, requester string,
	kind models.TransactionKind,
	amount decimal.Decimal,
	description string,
) (*models.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var txn *models.Transaction
	var account *models.Account
	err := s.store.WithinTx(ctx, func(tx repository.LedgerTx) error {
		locked, err := tx.LockAccounts(ctx, accountID)
		if err != nil {
			return accountNotFound(err)
		}
		account = locked[accountID]
		if err := checkOwner(account, requester); err != nil {
			return err
		}
		if !account.Active {
			return models.ErrAccountInactive
		}

		ts := now()
		switch kind {
		case models.TransactionDeposit:
			if err := credit(account, amount); err != nil {
				return err
			}
		case models.TransactionWithdrawal:
			if account.Balance.LessThan(amount) {
				return models.ErrInsufficientFunds
			}
			account.Balance = account.Balance.Sub(amount)
		}
		account.UpdatedAt = ts
		if err := tx.SaveAccount(ctx, account); err != nil {
			return err
		}

		txn = &models.Transaction{
			ID:          s.ids.Next(),
			AccountID:   accountID,
			Kind:        kind,
			Amount:      amount,
			Description: description,
			CreatedAt:   ts,
		}
		return tx.AppendTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, txn, account)
	return txn, nil
}

// Transfer debits the source, credits the account holding
// RecipientAccountNumber and records one transfer row on the source side.
func (s *TransactionCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.Transaction, error) {
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	// Existence and ownership come first so a stranger cannot discover
	// recipients through someone else's account.
	source, err := s.store.GetAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, accountNotFound(err)
	}
	if err := checkOwner(source, cmd.RequestingCustomerID); err != nil {
		return nil, err
	}
	// Every account number has the same length, so a malformed one cannot exist.
	if !utils.ValidateAccountNumber(cmd.RecipientAccountNumber, len(source.AccountNumber)) {
		return nil, models.ErrRecipientNotFound
	}

	var txn *models.Transaction
	var debited, credited *models.Account
	err = s.store.WithinTx(ctx, func(tx repository.LedgerTx) error {
		recipient, err := tx.GetAccountByNumber(ctx, cmd.RecipientAccountNumber)
		if errors.Is(err, repository.ErrNotFound) {
			return models.ErrRecipientNotFound
		}
		if err != nil {
			return err
		}
		if recipient.ID == cmd.AccountID {
			return models.ErrSameAccount
		}

		locked, err := tx.LockAccounts(ctx, cmd.AccountID, recipient.ID)
		if err != nil {
			return accountNotFound(err)
		}
		debited, credited = locked[cmd.AccountID], locked[recipient.ID]
		if !debited.Active {
			return models.ErrAccountInactive
		}
		if !credited.Active {
			return models.ErrRecipientNotFound
		}
		if debited.Balance.LessThan(cmd.Amount) {
			return models.ErrInsufficientFunds
		}

		if err := credit(credited, cmd.Amount); err != nil {
			return err
		}

		ts := now()
		debited.Balance = debited.Balance.Sub(cmd.Amount)
		debited.UpdatedAt = ts
		credited.UpdatedAt = ts
		if err := tx.SaveAccount(ctx, debited); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, credited); err != nil {
			return err
		}

		txn = &models.Transaction{
			ID:                 s.ids.Next(),
			AccountID:          cmd.AccountID,
			Kind:               models.TransactionTransfer,
			Amount:             cmd.Amount,
			Description:        cmd.Description,
			RecipientAccountID: recipient.ID,
			CreatedAt:          ts,
		}
		return tx.AppendTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, txn, debited, credited)
	return txn, nil
}

// afterCommit refreshes the read model and emits events. Failures here are
// logged only; the ledger already holds the truth.
func (s *TransactionCommandService) afterCommit(ctx context.Context, txn *models.Transaction, touched ...*models.Account) {
	s.readRepo.Cache(ctx, txn)

	publish(ctx, s.publisher, events.LedgerEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID:      strconv.FormatInt(txn.ID, 10),
		AccountID:          txn.AccountID,
		RecipientAccountID: txn.RecipientAccountID,
		Amount:             models.Money(txn.Amount),
		Type:               string(txn.Kind),
	})
	for _, account := range touched {
		publish(ctx, s.publisher, events.LedgerEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
			AccountID:  account.ID,
			NewBalance: models.Money(account.Balance),
			Change:     models.Money(txn.EffectOn(account.ID)),
		})
	}
}
