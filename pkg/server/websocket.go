package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// stream is one WebSocket diff session. Only its read goroutine touches the
// tree state.
type stream struct {
	srv    *Server
	conn   *websocket.Conn
	logger *slog.Logger

	reg  *snapshot.Registry
	prev *vdom.VNode
	seq  uint64

	writeMu sync.Mutex
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	st := &stream{
		srv:    s,
		conn:   conn,
		logger: s.logger.With("stream", middleware.GetReqID(r.Context())),
		reg:    snapshot.NewRegistry(),
	}

	s.metrics.activeStreams.Inc()
	defer s.metrics.activeStreams.Dec()

	st.logger.Debug("stream opened", "remote", r.RemoteAddr)
	st.run(context.WithoutCancel(r.Context()))
	st.logger.Debug("stream closed", "snapshots", st.seq)
}

// run reads frames until the connection closes. A heartbeat goroutine
// pings the client so idle streams stay open while the client answers.
func (st *stream) run(ctx context.Context) {
	defer st.conn.Close()

	readTimeout := st.srv.config.ReadTimeout
	st.conn.SetReadLimit(st.srv.config.MaxMessageSize)
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go st.heartbeat(done, readTimeout/2)

	for {
		st.conn.SetReadDeadline(time.Now().Add(readTimeout))

		mt, msg, err := st.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				st.logger.Error("read error", "error", err)
			}
			return
		}

		if mt != websocket.BinaryMessage {
			err = st.sendError(errors.New("E401").WithDetail("Stream messages must be binary frames."))
		} else {
			err = st.handleFrame(ctx, msg)
		}
		if err != nil {
			st.logger.Error("write error", "error", err)
			return
		}
	}
}

func (st *stream) heartbeat(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(st.srv.config.WriteTimeout)
			if err := st.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// handleFrame diffs the snapshot carried by msg against the last accepted
// one. Errors returned are write failures; protocol and document errors are
// reported to the client.
func (st *stream) handleFrame(ctx context.Context, msg []byte) error {
	ctx, span := st.srv.tracer.Start(ctx, "vdiff.stream.snapshot",
		trace.WithAttributes(attribute.Int("vdiff.message_bytes", len(msg))))
	defer span.End()

	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return st.reject(span, errors.New("E401").Wrap(err))
	}
	if frame.Type != protocol.FrameSnapshot {
		return st.reject(span, errors.New("E401").
			WithDetailf("Expected a %s frame, got %s.", protocol.FrameSnapshot, frame.Type))
	}
	data, err := frame.Data()
	if err != nil {
		return st.reject(span, errors.New("E401").Wrap(err))
	}

	next, err := snapshot.Decode(data, st.reg)
	if err != nil {
		return st.reject(span, errors.FromError(err, "E201"))
	}

	patches := st.srv.diff(ctx, endpointStream, st.prev, next)
	seq := st.seq + 1
	out, err := st.srv.encodePatches(seq, patches)
	if err != nil {
		st.srv.metrics.observeFailure(endpointStream, statusTooLarge)
		e := errors.FromError(err, "E402")
		fail(span, e)
		return st.sendError(e)
	}

	span.SetAttributes(attribute.Int64("vdiff.seq", int64(seq)))
	if err := st.write(out); err != nil {
		return err
	}
	st.srv.metrics.observeEncoded(endpointStream, len(out))
	st.seq = seq
	st.prev = next
	st.logger.Debug("patches sent", "seq", seq, "patches", len(patches), "bytes", len(out))
	return nil
}

func (st *stream) reject(span trace.Span, e *errors.Error) error {
	fail(span, e)
	st.srv.metrics.observeFailure(endpointStream, statusInvalid)
	st.logger.Debug("snapshot rejected", "code", e.Code, "error", e.Error())
	return st.sendError(e)
}

func (st *stream) sendError(e *errors.Error) error {
	return st.write(errorFrame(e))
}

func (st *stream) write(data []byte) error {
	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	if err := st.conn.SetWriteDeadline(time.Now().Add(st.srv.config.WriteTimeout)); err != nil {
		return err
	}
	if err := st.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
