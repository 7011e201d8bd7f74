package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/INDUS0007/soul/pkg/register"
	"github.com/INDUS0007/soul/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.WalletTransactionStore = NewWalletTransactionStore(provider)
	})
}

type WalletTransactionStore struct {
	CommonFields
}

func NewWalletTransactionStore(provider SqlProviderAchieve) *WalletTransactionStore {
	repo := &WalletTransactionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_WALLET_TRANSACTION)
	repo.SetAllColumns("id", "user_id", "chat_id", "type", "amount", "balance_after", "description", "created_at")
	return repo
}

func (s *WalletTransactionStore) Create(ctx context.Context, data types.WalletTransaction) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UserID, data.ChatID, data.Type, data.Amount, data.BalanceAfter, data.Description, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *WalletTransactionStore) ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.WalletTransaction, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.WalletTransaction
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}
