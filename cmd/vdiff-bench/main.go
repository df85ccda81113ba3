// Command vdiff-bench load-tests the /v1/stream endpoint. Every client keeps
// a page of a text input, an echo line and a keyed list, sends a snapshot
// per simulated keystroke and waits for the patch frame that carries the
// typed token back.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/config"
	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/server"
)

type profile struct {
	Name          string
	Clients       int
	Duration      time.Duration
	RPS           float64
	ListSize      int
	PayloadBytes  int
	MaxProcs      int
	MemLimitBytes int64
}

var profiles = map[string]profile{
	"fast": {
		Name:         "fast",
		Clients:      50,
		Duration:     10 * time.Second,
		RPS:          2,
		ListSize:     20,
		PayloadBytes: 24,
	},
	"standard": {
		Name:         "standard",
		Clients:      200,
		Duration:     30 * time.Second,
		RPS:          5,
		ListSize:     50,
		PayloadBytes: 24,
	},
	"stress": {
		Name:          "stress",
		Clients:       500,
		Duration:      60 * time.Second,
		RPS:           10,
		ListSize:      100,
		PayloadBytes:  24,
		MaxProcs:      4,
		MemLimitBytes: 2 << 30,
	},
}

type benchConfig struct {
	profile

	// URL is the stream endpoint; empty starts an in-process server.
	URL               string
	CompressThreshold int
	JSONOutput        string
	SnapshotTimeout   time.Duration
}

// benchFlags are the raw command-line values.
type benchFlags struct {
	profile  string
	clients  int
	duration time.Duration
	rps      float64
	list     int
	payload  int
	maxProcs int
	memLimit string
	url      string
	compress bool
	json     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f benchFlags

	cmd := &cobra.Command{
		Use:   "vdiff-bench",
		Short: "Load-test the vdiff stream endpoint",
		Long: `vdiff-bench opens concurrent WebSocket streams, sends a snapshot per
simulated keystroke and measures the time until the patch frame carrying
the keystroke arrives.

Without --url an in-process server is started on a loopback port.

Examples:
  vdiff-bench --profile fast
  vdiff-bench --clients 20 --duration 5s --json report.json
  vdiff-bench --url ws://localhost:7420/v1/stream`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			if cfg.MaxProcs > 0 {
				runtime.GOMAXPROCS(cfg.MaxProcs)
			}
			if cfg.MemLimitBytes > 0 {
				debug.SetMemoryLimit(cfg.MemLimitBytes)
			}

			report, err := runBench(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			writeSummary(cmd.ErrOrStderr(), report)
			return writeReport(cmd.OutOrStdout(), cfg.JSONOutput, report)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.profile, "profile", "standard", "Profile: fast, standard or stress")
	fs.IntVar(&f.clients, "clients", 0, "Number of concurrent streams")
	fs.DurationVar(&f.duration, "duration", 0, "Benchmark duration, e.g. 30s")
	fs.Float64Var(&f.rps, "rps", 0, "Target snapshots/sec per client")
	fs.IntVar(&f.list, "list", 0, "Keyed list size of each page")
	fs.IntVar(&f.payload, "payload-bytes", 0, "Bytes of token typed per snapshot")
	fs.IntVar(&f.maxProcs, "max-procs", 0, "GOMAXPROCS cap (0 leaves it unchanged)")
	fs.StringVar(&f.memLimit, "mem-limit", "", "GOMEMLIMIT, e.g. 2GiB")
	fs.StringVar(&f.url, "url", "", "Stream endpoint of a running server")
	fs.BoolVar(&f.compress, "compress", true, "LZ4-compress large snapshot frames")
	fs.StringVar(&f.json, "json", "-", "JSON report path ('-' for stdout)")

	return cmd
}

// config applies the flags the user set on top of the chosen profile.
func (f *benchFlags) config(changed func(string) bool) (benchConfig, error) {
	name := strings.ToLower(strings.TrimSpace(f.profile))
	if name == "" {
		name = "standard"
	}
	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		profile:           base,
		URL:               f.url,
		CompressThreshold: -1,
		JSONOutput:        strings.TrimSpace(f.json),
	}
	if f.compress {
		cfg.CompressThreshold = config.DefaultCompressThreshold
	}
	if changed("clients") {
		cfg.Clients = f.clients
	}
	if changed("duration") {
		cfg.Duration = f.duration
	}
	if changed("rps") {
		cfg.RPS = f.rps
	}
	if changed("list") {
		cfg.ListSize = f.list
	}
	if changed("payload-bytes") {
		cfg.PayloadBytes = f.payload
	}
	if changed("max-procs") {
		cfg.MaxProcs = f.maxProcs
	}
	if changed("mem-limit") {
		limit, err := humanize.ParseBytes(f.memLimit)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid --mem-limit: %w", err)
		}
		cfg.MemLimitBytes = int64(limit)
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}

	switch {
	case cfg.Clients <= 0:
		return benchConfig{}, stderrors.New("--clients must be > 0")
	case cfg.Duration <= 0:
		return benchConfig{}, stderrors.New("--duration must be > 0")
	case cfg.RPS <= 0:
		return benchConfig{}, stderrors.New("--rps must be > 0")
	case cfg.ListSize <= 0:
		return benchConfig{}, stderrors.New("--list must be > 0")
	case cfg.PayloadBytes <= 0:
		return benchConfig{}, stderrors.New("--payload-bytes must be > 0")
	case cfg.MaxProcs < 0:
		return benchConfig{}, stderrors.New("--max-procs must be >= 0")
	}

	cfg.SnapshotTimeout = snapshotTimeout(cfg.RPS)
	return cfg, nil
}

func snapshotTimeout(rps float64) time.Duration {
	period := time.Duration(float64(time.Second) / rps)
	return max(10*period, 2*time.Second)
}

// runBench drives cfg.Clients streams until cfg.Duration elapses.
func runBench(ctx context.Context, cfg benchConfig) (benchReport, error) {
	wsURL := cfg.URL
	if wsURL == "" {
		addr, stop, err := startServer(ctx)
		if err != nil {
			return benchReport{}, err
		}
		defer stop()
		wsURL = "ws://" + addr + "/v1/stream"
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, max(4*cfg.Clients, 1024))
	var samples []time.Duration
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rtt := range samplesCh {
			samples = append(samples, rtt)
		}
	}()

	var (
		counters benchCounters
		errs     benchErrors
		ops      patchOpCounts
	)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	start := time.Now()
	var wg sync.WaitGroup
	for i := range cfg.Clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &client{id: i, cfg: cfg, counters: &counters, errs: &errs, ops: &ops, samples: samplesCh}
			if err := c.run(ctx, wsURL); err != nil {
				errs.totalErrors.Add(1)
			}
		}()
	}
	wg.Wait()
	close(samplesCh)
	<-collectorDone
	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return buildReport(cfg, elapsed, samples, &counters, &errs, &ops, before, after, beforeMetrics, afterMetrics), nil
}

// startServer serves the diff service on a loopback port until stop is
// called.
func startServer(ctx context.Context) (addr string, stop func(), err error) {
	srv := server.New(&server.ServerConfig{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		CompressThreshold: config.DefaultCompressThreshold,
	})
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	return ln.Addr().String(), func() {
		cancel()
		<-done
	}, nil
}
