package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"runtime/metrics"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vango-dev/vdiff/pkg/protocol"
)

type benchCounters struct {
	snapshotsSent     atomic.Uint64
	snapshotsComplete atomic.Uint64
	snapshotBytes     atomic.Uint64
	patchBytes        atomic.Uint64
	patchFrames       atomic.Uint64
	patchesTotal      atomic.Uint64
}

type benchErrors struct {
	dialFailures        atomic.Uint64
	writeFailures       atomic.Uint64
	frameDecodeFailures atomic.Uint64
	patchDecodeFailures atomic.Uint64
	serverErrorFrames   atomic.Uint64
	tokenMissing        atomic.Uint64
	totalErrors         atomic.Uint64
}

type patchOpCounts struct {
	counts [256]atomic.Uint64
}

func (p *patchOpCounts) add(op protocol.PatchOp) {
	p.counts[uint8(op)].Add(1)
}

func (p *patchOpCounts) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range p.counts {
		if n := p.counts[i].Load(); n > 0 {
			out[protocol.PatchOp(i).String()] = n
		}
	}
	return out
}

type runtimeSample struct {
	cpuTotalSeconds   float64
	cpuGCSeconds      float64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeSample {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeSample
	for _, s := range samples {
		if s.Value.Kind() == metrics.KindBad {
			continue
		}
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func gcCPUFraction(after, before runtimeSample) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if total <= 0 || gc < 0 {
		return 0
	}
	return gc / total
}

// percentile returns the p-quantile of sorted by the nearest-rank method.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
	Protocol   protocolInfo   `json:"protocol"`
	Errors     errorInfo      `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	Target    string `json:"target"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile           string  `json:"profile"`
	Clients           int     `json:"clients"`
	DurationMS        int64   `json:"duration_ms"`
	RPSPerClient      float64 `json:"rps_per_client"`
	ListSize          int     `json:"list_size"`
	PayloadBytes      int     `json:"payload_bytes"`
	CompressThreshold int     `json:"compress_threshold"`
	MaxProcs          int     `json:"max_procs"`
	MemLimitBytes     int64   `json:"mem_limit_bytes"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	SnapshotsTotal        uint64  `json:"snapshots_total"`
	SnapshotsPerSec       float64 `json:"snapshots_per_sec"`
	SnapshotsPerSecClient float64 `json:"snapshots_per_sec_per_client"`
}

type gcInfo struct {
	AllocBytes    uint64  `json:"alloc_bytes"`
	HeapLiveBytes uint64  `json:"heap_live_bytes"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

type protocolInfo struct {
	SnapshotBytesTotal uint64            `json:"snapshot_bytes_total"`
	PatchBytesTotal    uint64            `json:"patch_bytes_total"`
	PatchFrames        uint64            `json:"patch_frames_total"`
	PatchesTotal       uint64            `json:"patches_total"`
	AvgSnapshotBytes   float64           `json:"avg_snapshot_bytes"`
	AvgPatchBytes      float64           `json:"avg_patch_bytes"`
	PatchesPerSnapshot float64           `json:"patches_per_snapshot"`
	PatchOps           map[string]uint64 `json:"patch_ops"`
}

type errorInfo struct {
	TotalErrors         uint64 `json:"total_errors"`
	DialFailures        uint64 `json:"dial_failures"`
	WriteFailures       uint64 `json:"write_failures"`
	FrameDecodeFailures uint64 `json:"frame_decode_failures"`
	PatchDecodeFailures uint64 `json:"patch_decode_failures"`
	ServerErrorFrames   uint64 `json:"server_error_frames"`
	TokenMissing        uint64 `json:"token_missing"`
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	errs *benchErrors,
	ops *patchOpCounts,
	before, after runtime.MemStats,
	beforeRT, afterRT runtimeSample,
) benchReport {
	complete := counters.snapshotsComplete.Load()
	sent := counters.snapshotsSent.Load()
	perSec := float64(complete) / math.Max(0.001, elapsed.Seconds())

	var latency latencyInfo
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	target := cfg.URL
	if target == "" {
		target = "in-process"
	}

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			Target:    target,
			GitCommit: strings.TrimSpace(os.Getenv("VDIFF_GIT_COMMIT")),
		},
		Workload: workloadInfo{
			Profile:           cfg.Name,
			Clients:           cfg.Clients,
			DurationMS:        cfg.Duration.Milliseconds(),
			RPSPerClient:      cfg.RPS,
			ListSize:          cfg.ListSize,
			PayloadBytes:      cfg.PayloadBytes,
			CompressThreshold: cfg.CompressThreshold,
			MaxProcs:          cfg.MaxProcs,
			MemLimitBytes:     cfg.MemLimitBytes,
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			SnapshotsTotal:        complete,
			SnapshotsPerSec:       perSec,
			SnapshotsPerSecClient: perSec / float64(cfg.Clients),
		},
		GC: gcInfo{
			AllocBytes:    after.TotalAlloc - before.TotalAlloc,
			HeapLiveBytes: after.HeapAlloc,
			NumGC:         after.NumGC - before.NumGC,
			PauseTotalMS:  ms(time.Duration(after.PauseTotalNs - before.PauseTotalNs)),
			GCCPUFraction: gcCPUFraction(afterRT, beforeRT),
			AllocsObjects: afterRT.heapAllocsObjects - beforeRT.heapAllocsObjects,
		},
		Protocol: protocolInfo{
			SnapshotBytesTotal: counters.snapshotBytes.Load(),
			PatchBytesTotal:    counters.patchBytes.Load(),
			PatchFrames:        counters.patchFrames.Load(),
			PatchesTotal:       counters.patchesTotal.Load(),
			AvgSnapshotBytes:   ratio(counters.snapshotBytes.Load(), sent),
			AvgPatchBytes:      ratio(counters.patchBytes.Load(), counters.patchFrames.Load()),
			PatchesPerSnapshot: ratio(counters.patchesTotal.Load(), counters.patchFrames.Load()),
			PatchOps:           ops.snapshot(),
		},
		Errors: errorInfo{
			TotalErrors:         errs.totalErrors.Load(),
			DialFailures:        errs.dialFailures.Load(),
			WriteFailures:       errs.writeFailures.Load(),
			FrameDecodeFailures: errs.frameDecodeFailures.Load(),
			PatchDecodeFailures: errs.patchDecodeFailures.Load(),
			ServerErrorFrames:   errs.serverErrorFrames.Load(),
			TokenMissing:        errs.tokenMissing.Load(),
		},
	}
}

func writeSummary(w io.Writer, r benchReport) {
	fmt.Fprintln(w, "=== vdiff stream benchmark ===")
	fmt.Fprintf(w, "Target: %s\n", r.Run.Target)
	fmt.Fprintf(w, "Profile: %s\n", r.Workload.Profile)
	fmt.Fprintf(w, "Clients: %d\n", r.Workload.Clients)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(r.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target per-client rate: %.2f snapshots/s\n", r.Workload.RPSPerClient)
	fmt.Fprintf(w, "List size: %d\n", r.Workload.ListSize)
	if r.Workload.MemLimitBytes > 0 {
		fmt.Fprintf(w, "GOMEMLIMIT: %s\n", humanize.IBytes(uint64(r.Workload.MemLimitBytes)))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Snapshots: %d\n", r.Throughput.SnapshotsTotal)
	fmt.Fprintf(w, "Throughput: %.1f snapshots/s (%.2f per client)\n", r.Throughput.SnapshotsPerSec, r.Throughput.SnapshotsPerSecClient)
	fmt.Fprintf(w, "Errors: %d\n", r.Errors.TotalErrors)
	fmt.Fprintln(w)

	if r.Throughput.SnapshotsTotal == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "RTT (snapshot sent -> patch frame decoded):")
		fmt.Fprintf(w, "  min: %.2f ms\n", r.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", r.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", r.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", r.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", r.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Protocol (avg per frame):")
	fmt.Fprintf(w, "  snapshot: %s\n", humanize.Bytes(uint64(r.Protocol.AvgSnapshotBytes)))
	fmt.Fprintf(w, "  patches:  %s\n", humanize.Bytes(uint64(r.Protocol.AvgPatchBytes)))
	fmt.Fprintf(w, "  patches/snapshot: %.2f\n", r.Protocol.PatchesPerSnapshot)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %s\n", humanize.Bytes(r.GC.AllocBytes))
	fmt.Fprintf(w, "  heap_live: %s\n", humanize.Bytes(r.GC.HeapLiveBytes))
	fmt.Fprintf(w, "  num_gc:    %d\n", r.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms\n", r.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_cpu:    %.2f%%\n", r.GC.GCCPUFraction*100)
}

// writeReport writes the JSON report to path, or to stdout for "-".
func writeReport(stdout io.Writer, path string, r benchReport) error {
	out := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
