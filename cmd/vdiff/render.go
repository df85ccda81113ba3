package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/pkg/render"
	"github.com/vango-dev/vdiff/pkg/snapshot"
)

func renderCmd(a *app) *cobra.Command {
	var cfg render.RendererConfig

	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render a snapshot as HTML",
		Long: `Render a snapshot as HTML.

With --indices every element carries a data-vidx attribute holding its
preorder index, so patch output can be matched against the markup.

Examples:
  vdiff render page.yaml
  vdiff render page.yaml --pretty --indices`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.loadTree(cmd, args[0], snapshot.NewRegistry())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := render.NewRenderer(cfg).RenderToWriter(out, root); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&cfg.Pretty, "pretty", "p", false, "Indent the output")
	cmd.Flags().BoolVar(&cfg.ShowIndices, "indices", false, "Add data-vidx attributes")

	return cmd
}
