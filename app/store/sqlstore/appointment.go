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
		provider.stores.AppointmentStore = NewAppointmentStore(provider)
	})
}

type AppointmentStore struct {
	CommonFields
}

func NewAppointmentStore(provider SqlProviderAchieve) *AppointmentStore {
	repo := &AppointmentStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_APPOINTMENT)
	repo.SetAllColumns("id", "user_id", "counsellor_id", "start_time", "actual_start_time", "status", "is_confirmed", "created_at")
	return repo
}

func (s *AppointmentStore) Create(ctx context.Context, data types.Appointment) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UserID, data.CounsellorID, data.StartTime, data.ActualStartTime, data.Status, data.IsConfirmed, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

// GetUpcoming 返回该用户与咨询师之间最近一条已确认的待开始预约。
func (s *AppointmentStore) GetUpcoming(ctx context.Context, userID, counsellorID string) (*types.Appointment, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{
			"user_id":       userID,
			"counsellor_id": counsellorID,
			"status":        types.APPOINTMENT_STATUS_SCHEDULED,
			"is_confirmed":  true,
		}).
		OrderBy("start_time ASC").
		Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Appointment
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *AppointmentStore) MarkInProgress(ctx context.Context, id string, actualStartTime int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": id}).
		Set("status", types.APPOINTMENT_STATUS_IN_PROGRESS).
		Set("actual_start_time", actualStartTime)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
