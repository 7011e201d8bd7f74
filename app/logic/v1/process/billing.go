package process

import (
	"context"
	"log/slog"

	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/pkg/register"
	"github.com/INDUS0007/soul/pkg/safe"
)

const billingBatchSize = 200

func init() {
	register.RegisterFunc[*Process](ProcessKey{}, func(p *Process) {
		// 活跃会话按分钟预扣
		if _, err := p.Cron().AddFunc("@every 1m", func() {
			safe.Run(func() {
				if err := v1.NewBillingLogic(context.Background(), p.Core()).AccrueActive(billingBatchSize); err != nil {
					slog.Error("billing accrual run failed", slog.String("error", err.Error()))
				}
			})
		}); err != nil {
			panic(err)
		}

		// 余额不足导致的欠费结算重试
		if _, err := p.Cron().AddFunc("@every 5m", func() {
			safe.Run(func() {
				if err := v1.NewBillingLogic(context.Background(), p.Core()).RetrySettlements(billingBatchSize); err != nil {
					slog.Error("billing retry run failed", slog.String("error", err.Error()))
				}
			})
		}); err != nil {
			panic(err)
		}
	})
}
