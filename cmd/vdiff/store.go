package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/snapshot"
)

func putCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <name> <snapshot>",
		Short: "Store a snapshot under a name",
		Long: `Validate a snapshot and store it in the configured store (store.uri)
under <name>. Stored snapshots can be passed to diff, tree and render by
name.

Examples:
  vdiff put home@2 after.yaml
  cat after.yaml | vdiff put home@2 -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, location := args[0], args[1]
			data, err := a.readSnapshot(cmd.Context(), cmd.InOrStdin(), location)
			if err != nil {
				return err
			}
			if _, err := snapshot.Decode(data, snapshot.NewRegistry()); err != nil {
				return errors.FromError(err, "E201").In(location)
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.Put(cmd.Context(), name, data); err != nil {
				return err
			}
			a.logger.Debug("snapshot stored", "store", a.cfg.Store.URI, "name", name, "bytes", len(data))
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s)\n", name, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
	return cmd
}

func lsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List stored snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			names, err := st.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	return cmd
}
