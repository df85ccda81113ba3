package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// diff runs the differ inside a span and records metrics for it.
func (s *Server) diff(ctx context.Context, endpoint string, prev, next *vdom.VNode) []vdom.Patch {
	_, span := s.tracer.Start(ctx, "vdiff.diff",
		trace.WithAttributes(
			attribute.String("vdiff.endpoint", endpoint),
			attribute.Int("vdiff.old_nodes", prev.Size()),
			attribute.Int("vdiff.new_nodes", next.Size()),
		),
	)
	defer span.End()

	start := time.Now()
	patches := vdom.Diff(prev, next)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("vdiff.patches", len(patches)))
	s.metrics.observeDiff(endpoint, elapsed, patches)
	return patches
}

// fail marks span as failed with err.
func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
