package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/internal/attachment/domain"
	attachment "attachkeeper/internal/attachment/interfaces"
	"attachkeeper/internal/shared/logs"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func NewFieldsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "fields [type...]",
		Short:   "List the file fields and storage folder of each record type",
		Example: "$ attachd fields page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			reg := app.NewRegistry(app.Options{
				PublicURL:            cfg.Attachment.PublicURL,
				VirtualPropKey:       cfg.Attachment.VirtualPropKey,
				UploadedFilesStorage: cfg.Attachment.UploadedFilesStorage,
			}, nil, logs.Logger())
			if err = attachment.RegisterSchemas(afero.NewOsFs(), reg, cfg.Schemas); err != nil {
				return err
			}
			return printFields(cmd.OutOrStdout(), reg, args)
		},
	}
}

func printFields(out io.Writer, reg *app.Registry, types []string) error {
	if len(types) == 0 {
		types = reg.Types()
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tFOLDER\tFIELD\tBLOCK PATH")
	for _, t := range types {
		l, ok := reg.Lookup(t)
		if !ok {
			return fmt.Errorf("unknown record type %q", t)
		}
		for _, leaf := range l.Leaves() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t, l.Folder(), domain.TrimBlockIndex(leaf.Path), leaf.Path)
		}
	}
	return w.Flush()
}
