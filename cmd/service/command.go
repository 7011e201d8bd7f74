package service

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/app/logic/v1/process"
)

type Options struct {
	ConfigPath string
}

func NewCommand() *cobra.Command {
	var opt Options
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run the counselling chat api service",
		Run: func(cmd *cobra.Command, args []string) {
			Run(opt)
		},
	}
	bindConfigFlag(cmd.Flags(), &opt)
	return cmd
}

func bindConfigFlag(fs *pflag.FlagSet, opt *Options) {
	fs.StringVarP(&opt.ConfigPath, "config", "c", "", "config file path, falls back to env when empty")
}

// NewProcessCommand runs only the background jobs, for deployments that
// split the api from the cron workers.
func NewProcessCommand() *cobra.Command {
	var opt Options
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the background sweep and billing jobs",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := core.MustLoadBaseConfig(opt.ConfigPath)
			appCore := core.MustSetupCore(cfg)

			proc := process.NewProcess(appCore)
			proc.Start()
			slog.Info("process started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
			defer cancel()
			proc.Stop(ctx)
		},
	}
	bindConfigFlag(cmd.Flags(), &opt)
	return cmd
}

func Run(opt Options) {
	cfg := core.MustLoadBaseConfig(opt.ConfigPath)
	appCore := core.MustSetupCore(cfg)

	proc := process.NewProcess(appCore)
	proc.Start()

	engine := serve(appCore)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}

	go func() {
		slog.Info("service started", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server exited", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	proc.Stop(ctx)
}
