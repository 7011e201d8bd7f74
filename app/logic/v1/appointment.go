package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/INDUS0007/soul/app/core"
)

type AppointmentLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAppointmentLogic(ctx context.Context, core *core.Core) *AppointmentLogic {
	return &AppointmentLogic{
		ctx:  ctx,
		core: core,
	}
}

// AutoStart flips the pair's next confirmed appointment to in progress when
// their chat goes live. Best effort, failures only log.
func (l *AppointmentLogic) AutoStart(userID, counsellorID string) {
	appointment, err := l.core.Store().AppointmentStore().GetUpcoming(l.ctx, userID, counsellorID)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("failed to load upcoming appointment",
				slog.String("user_id", userID), slog.String("counsellor_id", counsellorID), slog.String("error", err.Error()))
		}
		return
	}

	if err = l.core.Store().AppointmentStore().MarkInProgress(l.ctx, appointment.ID, time.Now().Unix()); err != nil {
		slog.Error("failed to mark appointment in progress",
			slog.String("appointment_id", appointment.ID), slog.String("error", err.Error()))
	}
}
