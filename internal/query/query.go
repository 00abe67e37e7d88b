// Package query holds the read side. Services return view models and never
// mutate state.
package query

import (
	"context"
	"errors"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/models"
)

// ownedAccount loads an account and checks that requester may see it. An
// empty requester skips the check.
func ownedAccount(ctx context.Context, store repository.LedgerStore, accountID, requester string) (*models.Account, error) {
	account, err := store.GetAccount(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if requester != "" && account.CustomerID != requester {
		return nil, models.ErrForbidden
	}
	return account, nil
}

// viewsFor renders txns relative to whichever of accountIDs each one touches,
// preferring the debited side.
func viewsFor(txns []models.Transaction, accountIDs ...string) []models.TransactionView {
	owned := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		owned[id] = true
	}
	views := make([]models.TransactionView, 0, len(txns))
	for i := range txns {
		perspective := txns[i].AccountID
		if !owned[perspective] && owned[txns[i].RecipientAccountID] {
			perspective = txns[i].RecipientAccountID
		}
		views = append(views, *models.TransactionToView(&txns[i], perspective))
	}
	return views
}
