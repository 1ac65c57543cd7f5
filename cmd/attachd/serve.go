package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	attachment "attachkeeper/internal/attachment/interfaces"
	"attachkeeper/internal/shared/logs"
	"attachkeeper/internal/shared/serverconfig"
	transporthttp "attachkeeper/internal/shared/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "$ attachd serve -c configs/conf.yml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, loader, err := serverconfig.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err = logs.Init(appName, cfg.Log); err != nil {
		return err
	}
	defer func() { _ = logs.Sync() }()

	// 附件选项和字段定义启动时读一次，热更新只调整日志级别
	loader.Watch(func() any { return &serverconfig.Config{} }, func(v any, err error) {
		if err != nil {
			logs.Error("reload config failed", zap.Error(err))
			return
		}
		next := v.(*serverconfig.Config)
		logs.SetLevel(next.Log.Level)
		logs.Info("config reloaded", zap.String("log_level", next.Log.Level))
	})

	module, err := attachment.New(ctx, cfg, logs.Logger())
	if err != nil {
		logs.Error("init attachment module failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := module.Close(context.Background()); err != nil {
			logs.Warn("close attachment module failed", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	addr := fmt.Sprintf("%s:%d", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	server := transporthttp.NewHttpServer(addr, engine, logs.Logger())
	if err = module.Register(server.Group()); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Info("http server started", zap.String("addr", addr))
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err = <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
