package process

import (
	"context"
	"log/slog"

	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/pkg/register"
	"github.com/INDUS0007/soul/pkg/safe"
)

const sweepBatchSize = 200

func init() {
	register.RegisterFunc[*Process](ProcessKey{}, func(p *Process) {
		if _, err := p.Cron().AddFunc("@every 1m", func() {
			safe.Run(func() {
				swept, err := v1.NewChatLogic(context.Background(), p.Core()).SweepInactive(sweepBatchSize)
				if err != nil {
					slog.Error("chat sweep run failed", slog.String("error", err.Error()))
					return
				}
				if swept > 0 {
					slog.Info("chat sweep parked silent chats", slog.Int("count", swept))
				}
			})
		}); err != nil {
			panic(err)
		}
	})
}
