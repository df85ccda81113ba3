package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/config"
	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/store"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the state shared by all commands.
type app struct {
	configPath string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vdiff",
		Short: "Diff UI trees into minimal patch lists",
		Long: `vdiff compares two snapshots of a UI tree and prints the patches that
turn the first into the second.

Snapshots are YAML or JSON documents. They are read from a path, a
file:// or s3:// URI, "-" for stdin, or by name from the configured
snapshot store. The same diffs are served over HTTP and WebSocket by
'vdiff serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default vdiff.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		diffCmd(a),
		treeCmd(a),
		renderCmd(a),
		putCmd(a),
		lsCmd(a),
		serveCmd(a),
		versionCmd(),
	)

	return rootCmd
}

// load reads the configuration and builds the logger.
func (a *app) load(stderr io.Writer) error {
	if a.noColor {
		errors.DisableColors()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(stderr, cfg)
	a.logger.Debug("config loaded", "path", cfg.Path())
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) s3Options() store.S3Options {
	s3 := a.cfg.Store.S3
	return store.S3Options{
		Region:          s3.Region,
		Endpoint:        s3.Endpoint,
		PathStyle:       s3.PathStyle,
		AccessKeyID:     s3.AccessKeyID,
		SecretAccessKey: s3.SecretAccessKey,
	}
}

// openStore opens the configured snapshot store.
func (a *app) openStore() (store.Store, error) {
	return store.Open(a.cfg.Store.URI, a.s3Options())
}

// readSnapshot reads the document at location: "-" for stdin, a URI, an
// existing path, or else a name in the configured store.
func (a *app) readSnapshot(ctx context.Context, stdin io.Reader, location string) ([]byte, error) {
	switch {
	case location == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.New("E302").WithDetail("Cannot read stdin.").Wrap(err)
		}
		return data, nil
	case strings.Contains(location, "://"):
		return store.Fetch(ctx, location, a.s3Options())
	}

	if _, err := os.Stat(location); err == nil {
		return store.Fetch(ctx, location, a.s3Options())
	}
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("reading from store", "store", a.cfg.Store.URI, "name", location)
	return st.Get(ctx, location)
}

// loadTree reads and decodes the snapshot at location.
func (a *app) loadTree(cmd *cobra.Command, location string, reg *snapshot.Registry) (*vdom.VNode, error) {
	data, err := a.readSnapshot(cmd.Context(), cmd.InOrStdin(), location)
	if err != nil {
		return nil, err
	}
	tree, err := snapshot.Decode(data, reg)
	if err != nil {
		return nil, errors.FromError(err, "E201").In(location)
	}
	return tree, nil
}
