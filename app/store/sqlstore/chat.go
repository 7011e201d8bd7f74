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
		provider.stores.ChatStore = NewChatStore(provider)
	})
}

type ChatStore struct {
	CommonFields
}

func NewChatStore(provider SqlProviderAchieve) *ChatStore {
	repo := &ChatStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT)
	repo.SetAllColumns("id", "user_id", "counsellor_id", "status", "created_at", "started_at", "ended_at",
		"last_user_activity", "billed_amount", "duration_minutes", "is_billed", "billing_processed_at", "updated_at")
	return repo
}

func (s *ChatStore) Create(ctx context.Context, data types.Chat) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UserID, data.CounsellorID, data.Status, data.CreatedAt, data.StartedAt, data.EndedAt,
			data.LastUserActivity, data.BilledAmount, data.DurationMinutes, data.IsBilled, data.BillingProcessedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ChatStore) GetChat(ctx context.Context, chatID string) (*types.Chat, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": chatID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Chat
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetChatForUpdate 行锁读取，必须在事务内调用。
// 所有针对同一会话的并发写入都在这里串行化。
func (s *ChatStore) GetChatForUpdate(ctx context.Context, chatID string) (*types.Chat, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": chatID}).Suffix("FOR UPDATE")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Chat
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ChatStore) Update(ctx context.Context, data *types.Chat) error {
	data.UpdatedAt = time.Now().Unix()

	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": data.ID}).
		Set("counsellor_id", data.CounsellorID).
		Set("status", data.Status).
		Set("started_at", data.StartedAt).
		Set("ended_at", data.EndedAt).
		Set("last_user_activity", data.LastUserActivity).
		Set("billed_amount", data.BilledAmount).
		Set("duration_minutes", data.DurationMinutes).
		Set("is_billed", data.IsBilled).
		Set("billing_processed_at", data.BillingProcessedAt).
		Set("updated_at", data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

// TouchUserActivity 单列更新活跃时间，不回写整行，
// 避免用读副本的旧快照覆盖并发事务提交的计费字段。
func (s *ChatStore) TouchUserActivity(ctx context.Context, chatID string, ts int64) error {
	queryString, args, err := s.touchUserActivityQuery(chatID, ts)
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ChatStore) touchUserActivityQuery(chatID string, ts int64) (string, []interface{}, error) {
	return sq.Update(s.GetTable()).Where(sq.Eq{"id": chatID}).
		Set("last_user_activity", ts).
		Set("updated_at", time.Now().Unix()).
		ToSql()
}

func (s *ChatStore) listConds(opts types.ListChatOptions) sq.And {
	var conds sq.And
	if opts.UserID != "" {
		conds = append(conds, sq.Eq{"user_id": opts.UserID})
	}
	if opts.CounsellorID != "" {
		conds = append(conds, sq.Eq{"counsellor_id": opts.CounsellorID})
	}
	if opts.Status != nil {
		conds = append(conds, sq.Eq{"status": *opts.Status})
	}
	if opts.Unassigned {
		conds = append(conds, sq.Eq{"counsellor_id": ""})
	}
	return conds
}

func (s *ChatStore) List(ctx context.Context, opts types.ListChatOptions, page, pageSize uint64) ([]types.Chat, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if conds := s.listConds(opts); len(conds) > 0 {
		query = query.Where(conds)
	}

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Chat
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ChatStore) Total(ctx context.Context, opts types.ListChatOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	if conds := s.listConds(opts); len(conds) > 0 {
		query = query.Where(conds)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// ListActiveSilentSince 查出活跃但用户已静默超时的会话ID，交由定时任务处理。
func (s *ChatStore) ListActiveSilentSince(ctx context.Context, before time.Time, limit uint64) ([]string, error) {
	query := sq.Select("id").From(s.GetTable()).
		Where(sq.Eq{"status": types.CHAT_STATUS_ACTIVE}).
		Where(sq.Gt{"last_user_activity": 0}).
		Where(sq.Lt{"last_user_activity": before.Unix()})

	if limit > 0 {
		query = query.Limit(limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var ids []string
	if err = s.GetReplica(ctx).Select(&ids, queryString, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ChatStore) ListActiveStarted(ctx context.Context, limit uint64) ([]string, error) {
	query := sq.Select("id").From(s.GetTable()).
		Where(sq.Eq{"status": types.CHAT_STATUS_ACTIVE}).
		Where(sq.Gt{"started_at": 0})

	if limit > 0 {
		query = query.Limit(limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var ids []string
	if err = s.GetReplica(ctx).Select(&ids, queryString, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUnbilledCompleted 查出已关闭但结算未成功的会话，用于账务补偿。
func (s *ChatStore) ListUnbilledCompleted(ctx context.Context, limit uint64) ([]string, error) {
	query := sq.Select("id").From(s.GetTable()).
		Where(sq.Eq{"status": types.CHAT_STATUS_COMPLETED, "is_billed": false})

	if limit > 0 {
		query = query.Limit(limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var ids []string
	if err = s.GetReplica(ctx).Select(&ids, queryString, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ChatStore) Delete(ctx context.Context, chatID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": chatID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
