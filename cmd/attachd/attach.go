package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"attachkeeper/internal/attachment/domain"
	attachment "attachkeeper/internal/attachment/interfaces"
	"attachkeeper/internal/shared/logs"
	"attachkeeper/internal/shared/transport"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type attachOptions struct {
	typeID string
	id     string
	field  string
	file   string
}

func NewAttachCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	a := &attachOptions{}
	cmd := &cobra.Command{
		Use:     "attach",
		Short:   "Upload a local file into a record's file field and save the record",
		Example: "$ attachd attach --type page --id 42 --field meta.icon --file ./logo.png",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logs.Sync() }()

			module, err := attachment.New(ctx, cfg, logs.Logger())
			if err != nil {
				return err
			}
			defer func() { _ = module.Close(context.Background()) }()

			return runAttach(ctx, cmd, module, a)
		},
	}
	cmd.Flags().StringVar(&a.typeID, "type", "", "record type")
	cmd.Flags().StringVar(&a.id, "id", "", "record id")
	cmd.Flags().StringVar(&a.field, "field", "", "file field path, e.g. meta.icon")
	cmd.Flags().StringVar(&a.file, "file", "", "local file to upload")
	for _, f := range []string{"type", "id", "field", "file"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func runAttach(ctx context.Context, cmd *cobra.Command, module *attachment.Module, a *attachOptions) (err error) {
	ctx = transport.NewContextWithParent(ctx, "cli.attach")
	defer func() {
		if err != nil {
			transport.Fail(ctx, err)
		} else {
			transport.SetBizCode(ctx, transport.OK)
		}
		transport.WriteAccessLog(ctx, logs.Logger())
	}()

	l, ok := module.Registry.Lookup(a.typeID)
	if !ok {
		return domain.ErrRecordNotFound.WithMsg("未注册的记录类型").WithData("type", a.typeID)
	}

	f, err := os.Open(a.file)
	if err != nil {
		return domain.ErrInvalidInput.WithMsg("打不开本地文件").WithData("file", a.file).WithCause(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return domain.ErrInvalidInput.WithData("file", a.file).WithCause(err)
	}

	rec, err := module.Store.Load(ctx, a.typeID, a.id)
	if err != nil {
		return err
	}
	att, err := l.Attach(ctx, rec, a.field, &domain.Upload{OriginalName: filepath.Base(a.file), Size: info.Size()}, f)
	if err != nil {
		return err
	}
	if err = module.Store.Save(ctx, rec); err != nil {
		return err
	}

	urls, err := l.PublicURLs(rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "attached %s (%s) to %s/%s %s\n",
		att.Filename, humanize.Bytes(uint64(info.Size())), a.typeID, a.id, a.field)
	if u, ok := urls[a.field+"."+l.VirtualPropKey()]; ok {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}
