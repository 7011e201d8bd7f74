package core

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/INDUS0007/soul/app/core/srv"
	"github.com/INDUS0007/soul/app/store/sqlstore"
	"github.com/INDUS0007/soul/pkg/i18n"
	"github.com/INDUS0007/soul/pkg/utils"
)

const APP_NAME = "soul"

type Core struct {
	cfg        CoreConfig
	stores     func() *sqlstore.Provider
	srv        *srv.Srv
	httpEngine *gin.Engine
	metrics    *Metrics
	localizer  i18n.Localizer
}

func MustSetupCore(cfg CoreConfig) *Core {
	core := &Core{
		cfg: cfg,
	}

	setupLog(cfg.Log)
	utils.SetupIDWorker(1)

	core.metrics = SetupMetrics(APP_NAME, "api")
	core.localizer = i18n.NewLocalizer(i18n.DEFAULT_LANG, "zh-CN")
	core.stores = sqlstore.MustSetup(cfg.Postgres)

	if err := core.stores().Install(); err != nil {
		panic(err)
	}

	core.srv = srv.SetupSrvs(
		srv.ApplyHub(srv.HubConfig{
			SendQueueSize: cfg.Chat.SendQueueSize,
			SendTimeout:   cfg.Chat.SendTimeout(),
		}),
	)

	return core
}

func setupLog(cfg Log) {
	var w = os.Stdout
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Path != "" {
		logger := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(logger, opts)))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Localizer() i18n.Localizer {
	return s.localizer
}

func (s *Core) HttpEngine() *gin.Engine {
	if s.httpEngine == nil {
		s.httpEngine = gin.New()
	}
	return s.httpEngine
}

// Transaction 透传到存储层事务，业务逻辑统一从这里开启。
func (s *Core) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	return s.stores().Transaction(ctx, next)
}
