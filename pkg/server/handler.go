package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// ContentTypeFrame is the media type of binary patch frames.
const ContentTypeFrame = "application/x-vdiff"

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	Old json.RawMessage `json:"old"`
	New json.RawMessage `json:"new"`
}

// DiffResponse is the JSON reply of POST /v1/diff.
type DiffResponse struct {
	Patches []snapshot.Patch `json:"patches"`
	Summary map[string]int   `json:"summary"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "POST /v1/diff", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	prev, next, reg, verr := s.readDiffRequest(w, r)
	if verr != nil {
		fail(span, verr)
		status := statusInvalid
		if verr.Code == "E402" {
			status = statusTooLarge
		}
		s.metrics.observeFailure(endpointHTTP, status)
		writeError(w, verr)
		return
	}

	patches := s.diff(ctx, endpointHTTP, prev, next)
	span.SetAttributes(attribute.Int("vdiff.patches", len(patches)))

	if wantsFrame(r) {
		data, err := s.encodePatches(0, patches)
		if err != nil {
			e := errors.FromError(err, "E402")
			fail(span, e)
			writeError(w, e)
			return
		}
		s.metrics.observeEncoded(endpointHTTP, len(data))
		w.Header().Set("Content-Type", ContentTypeFrame)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	writeJSON(w, http.StatusOK, NewDiffResponse(patches, reg))
}

// NewDiffResponse builds the JSON reply for patches, naming callbacks
// through reg.
func NewDiffResponse(patches []vdom.Patch, reg *snapshot.Registry) DiffResponse {
	summary := make(map[string]int)
	for op, n := range vdom.Summarize(patches) {
		summary[op.String()] = n
	}
	return DiffResponse{
		Patches: snapshot.ToPatches(patches, reg),
		Summary: summary,
	}
}

// readDiffRequest decodes both snapshots of a diff request through one
// registry.
func (s *Server) readDiffRequest(w http.ResponseWriter, r *http.Request) (prev, next *vdom.VNode, reg *snapshot.Registry, _ *errors.Error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxMessageSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, nil, nil, errors.New("E402").
				WithDetailf("The request body exceeds %d bytes.", tooLarge.Limit)
		}
		return nil, nil, nil, errors.New("E403").Wrap(err)
	}

	var req DiffRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, nil, errors.New("E403").Wrap(err)
	}
	if req.Old == nil || req.New == nil {
		return nil, nil, nil, errors.New("E403").
			WithSuggestion(`Send {"old": ..., "new": ...}; use null for an empty tree.`)
	}

	reg = snapshot.NewRegistry()
	if prev, err = decodeMember(req.Old, reg); err != nil {
		return nil, nil, nil, inMember(err, "old")
	}
	if next, err = decodeMember(req.New, reg); err != nil {
		return nil, nil, nil, inMember(err, "new")
	}
	return prev, next, reg, nil
}

// inMember attributes a snapshot error to one side of the request.
func inMember(err error, member string) *errors.Error {
	return errors.FromError(err, "E201").In(member)
}

// decodeMember decodes one side of a diff request: null, a document held in
// a JSON string, or an inline JSON document.
func decodeMember(raw json.RawMessage, reg *snapshot.Registry) (*vdom.VNode, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var doc string
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.New("E201").Wrap(err)
		}
		return snapshot.Decode([]byte(doc), reg)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, errors.New("E201").Wrap(err)
	}
	return snapshot.Decode(compact.Bytes(), reg)
}

// wantsFrame reports whether the client accepts binary patch frames.
func wantsFrame(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == ContentTypeFrame {
			return true
		}
	}
	return false
}

// encodePatches encodes patches as a FramePatches frame, compressed when the
// payload reaches the configured threshold.
func (s *Server) encodePatches(seq uint64, patches []vdom.Patch) ([]byte, error) {
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: seq, Patches: protocol.FromVDOM(patches)})
	frame, err := protocol.CompressFrame(protocol.FramePatches, payload, s.config.CompressThreshold)
	if err != nil {
		return nil, err
	}
	data, err := frame.Encode()
	if err != nil {
		return nil, errors.New("E402").
			WithDetailf("%d patches encode to %d bytes.", len(patches), len(frame.Payload)).
			Wrap(err)
	}
	return data, nil
}
