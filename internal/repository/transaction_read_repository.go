package repository

import (
	"context"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eaglebank/ledger-service/shared/models"
	sharedredis "github.com/eaglebank/ledger-service/shared/redis"
)

const transactionKeyPrefix = "ledger:transaction:"

// TransactionReadRepository serves transaction lookups from Redis when it is
// configured and falls back to the ledger store, warming the cache on every
// cold read. Records are immutable so cached entries never go stale.
type TransactionReadRepository struct {
	store LedgerStore
	cache *sharedredis.ViewCache[models.Transaction]
}

// NewTransactionReadRepository accepts a nil client, in which case every read
// goes to the store.
func NewTransactionReadRepository(store LedgerStore, redisClient *goredis.Client) *TransactionReadRepository {
	return &TransactionReadRepository{
		store: store,
		cache: sharedredis.NewViewCache[models.Transaction](redisClient, transactionKeyPrefix, 0),
	}
}

func (r *TransactionReadRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	return r.cache.GetOrLoad(ctx, strconv.FormatInt(id, 10), func(ctx context.Context) (*models.Transaction, error) {
		return r.store.GetTransaction(ctx, id)
	})
}

func (r *TransactionReadRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return r.store.ListTransactions(ctx, accountID)
}

func (r *TransactionReadRepository) Recent(ctx context.Context, accountIDs []string, limit int) ([]models.Transaction, error) {
	return r.store.RecentTransactions(ctx, accountIDs, limit)
}

// Cache stores a committed transaction. Called by the command side right
// after commit.
func (r *TransactionReadRepository) Cache(ctx context.Context, txn *models.Transaction) {
	r.cache.Set(ctx, strconv.FormatInt(txn.ID, 10), txn)
}
