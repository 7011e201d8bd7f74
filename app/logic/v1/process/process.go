package process

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/pkg/register"
)

type ProcessKey struct{}

// Process 后台定时任务调度器，各任务通过 init 注册。
type Process struct {
	cron *cron.Cron
	core *core.Core
}

func NewProcess(core *core.Core) *Process {
	p := &Process{
		cron: cron.New(),
		core: core,
	}

	for _, f := range register.ResolveFuncHandlers[*Process](ProcessKey{}) {
		f(p)
	}
	return p
}

func (p *Process) Cron() *cron.Cron {
	return p.cron
}

func (p *Process) Core() *core.Core {
	return p.core
}

func (p *Process) Start() {
	p.cron.Start()
}

func (p *Process) Stop(ctx context.Context) {
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
