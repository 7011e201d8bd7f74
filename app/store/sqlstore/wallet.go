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
		provider.stores.WalletStore = NewWalletStore(provider)
	})
}

type WalletStore struct {
	CommonFields
}

func NewWalletStore(provider SqlProviderAchieve) *WalletStore {
	repo := &WalletStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_WALLET)
	repo.SetAllColumns("user_id", "balance", "created_at", "updated_at")
	return repo
}

func (s *WalletStore) Create(ctx context.Context, data types.Wallet) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.UserID, data.Balance, data.CreatedAt, data.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO NOTHING")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *WalletStore) GetWallet(ctx context.Context, userID string) (*types.Wallet, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Wallet
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetWalletForUpdate 行锁读取，必须在事务内调用。
// 锁顺序约定：先锁会话行，再锁钱包行。
func (s *WalletStore) GetWalletForUpdate(ctx context.Context, userID string) (*types.Wallet, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"user_id": userID}).Suffix("FOR UPDATE")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Wallet
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *WalletStore) UpdateBalance(ctx context.Context, userID string, balance int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"user_id": userID}).
		Set("balance", balance).
		Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
