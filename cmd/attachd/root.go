package main

import (
	"context"

	"attachkeeper/internal/shared/logs"
	"attachkeeper/internal/shared/serverconfig"

	"github.com/spf13/cobra"
)

const appName = "attachd"

type rootOptions struct {
	configPath string
}

// NewRootCommand 返回挂好所有子命令的根命令。
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Attachment lifecycle service",
		Long:          "attachd keeps uploaded files in sync with the records that reference them: it rejects saves that point at missing files and deletes files a save has orphaned.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to conf.yml (default: search configs/conf.yml upward from the working directory)")

	rootCmd.AddCommand(NewServeCommand(ctx, opts))
	rootCmd.AddCommand(NewFieldsCommand(opts))
	rootCmd.AddCommand(NewAttachCommand(ctx, opts))
	return rootCmd
}

// loadConfig 读配置并初始化全局日志，所有子命令共用。
func (o *rootOptions) loadConfig() (serverconfig.Config, error) {
	cfg, _, err := serverconfig.Load(o.configPath)
	if err != nil {
		return serverconfig.Config{}, err
	}
	if err = logs.Init(appName, cfg.Log); err != nil {
		return serverconfig.Config{}, err
	}
	return cfg, nil
}
