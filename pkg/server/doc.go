// Package server exposes the differ over HTTP and WebSocket.
//
// Routes:
//
//	POST /v1/diff     diff two snapshot documents, reply JSON or a binary frame
//	GET  /v1/stream   WebSocket: diff each snapshot against the previous one
//	GET  /metrics     Prometheus metrics
//	GET  /healthz     liveness
//
// # Diff requests
//
// The body of POST /v1/diff is a JSON object with "old" and "new" members.
// Each member is either a snapshot document inlined as a JSON object, a
// string holding a YAML or JSON document, or null for an empty tree. The
// reply is a JSON object with the patch list and a per-op summary, or a
// FramePatches frame when the request carries Accept: application/x-vdiff.
//
// Both documents of a request share one handler registry, so a handler named
// in both compares equal.
//
// # Streams
//
// A stream client sends FrameSnapshot frames, each carrying a snapshot
// document. The server diffs every snapshot against the last one it accepted
// (the first against an empty tree) and answers with a FramePatches frame
// whose sequence number increases by one per reply. Documents that fail to
// decode are answered with a FrameError frame and leave the stream state
// unchanged.
//
// # Observability
//
// Every diff is recorded in Prometheus metrics and traced with an
// OpenTelemetry span carrying node and patch counts. Logging goes through
// the slog.Logger in the ServerConfig.
package server
