package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tobyfield/glint/internal/tracker"
	"github.com/tobyfield/glint/internal/types"
)

const trackerScopeName = "github.com/tobyfield/glint/tracker"

// InstrumentedTracker wraps tracker.Client with OTel tracing and metrics.
// Every API call gets a span and is counted in glint.tracker.* metrics.
// Use WrapTracker to create one; it returns the original client unchanged
// when telemetry is disabled.
type InstrumentedTracker struct {
	inner  tracker.Client
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapTracker returns c decorated with OTel instrumentation.
// When telemetry is disabled, c is returned as-is with zero overhead.
func WrapTracker(c tracker.Client) tracker.Client {
	if !Enabled() {
		return c
	}
	m := Meter(trackerScopeName)
	ops, _ := m.Int64Counter("glint.tracker.requests",
		metric.WithDescription("Total tracker API requests issued"),
	)
	dur, _ := m.Float64Histogram("glint.tracker.request.duration",
		metric.WithDescription("Tracker API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("glint.tracker.errors",
		metric.WithDescription("Total tracker API request errors"),
	)
	return &InstrumentedTracker{
		inner:  c,
		tracer: Tracer(trackerScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named tracker operation.
func (t *InstrumentedTracker) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("glint.tracker.operation", name)}, attrs...)
	ctx, span := t.tracer.Start(ctx, "tracker."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	t.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (t *InstrumentedTracker) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	t.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (t *InstrumentedTracker) ListTeams(ctx context.Context) ([]types.Team, error) {
	ctx, span, start := t.op(ctx, "ListTeams")
	v, err := t.inner.ListTeams(ctx)
	t.done(ctx, span, start, err)
	return v, err
}

func (t *InstrumentedTracker) ListProjects(ctx context.Context) ([]types.Project, error) {
	ctx, span, start := t.op(ctx, "ListProjects")
	v, err := t.inner.ListProjects(ctx)
	t.done(ctx, span, start, err)
	return v, err
}

func (t *InstrumentedTracker) ListLabels(ctx context.Context) ([]types.Label, error) {
	ctx, span, start := t.op(ctx, "ListLabels")
	v, err := t.inner.ListLabels(ctx)
	t.done(ctx, span, start, err)
	return v, err
}

func (t *InstrumentedTracker) ListWorkflowStates(ctx context.Context, teamID string) ([]types.WorkflowState, error) {
	attrs := []attribute.KeyValue{attribute.String("glint.team.id", teamID)}
	ctx, span, start := t.op(ctx, "ListWorkflowStates", attrs...)
	v, err := t.inner.ListWorkflowStates(ctx, teamID)
	t.done(ctx, span, start, err, attrs...)
	return v, err
}

func (t *InstrumentedTracker) ListRecentIssues(ctx context.Context, n int) ([]types.IssueSummary, error) {
	attrs := []attribute.KeyValue{attribute.Int("glint.issue.limit", n)}
	ctx, span, start := t.op(ctx, "ListRecentIssues", attrs...)
	v, err := t.inner.ListRecentIssues(ctx, n)
	t.done(ctx, span, start, err, attrs...)
	return v, err
}

func (t *InstrumentedTracker) GetCurrentUser(ctx context.Context) (*types.User, error) {
	ctx, span, start := t.op(ctx, "GetCurrentUser")
	v, err := t.inner.GetCurrentUser(ctx)
	t.done(ctx, span, start, err)
	return v, err
}

func (t *InstrumentedTracker) CreateIssue(ctx context.Context, payload *types.IssueCreate) (*types.CreatedIssue, error) {
	attrs := []attribute.KeyValue{attribute.String("glint.team.id", payload.TeamID)}
	ctx, span, start := t.op(ctx, "CreateIssue", attrs...)
	v, err := t.inner.CreateIssue(ctx, payload)
	t.done(ctx, span, start, err, attrs...)
	return v, err
}

func (t *InstrumentedTracker) UpdateIssue(ctx context.Context, id string, payload *types.IssueUpdate) error {
	attrs := []attribute.KeyValue{attribute.String("glint.issue.id", id)}
	ctx, span, start := t.op(ctx, "UpdateIssue", attrs...)
	err := t.inner.UpdateIssue(ctx, id, payload)
	t.done(ctx, span, start, err, attrs...)
	return err
}

func (t *InstrumentedTracker) CreateLabel(ctx context.Context, name string) (*types.Label, error) {
	attrs := []attribute.KeyValue{attribute.String("glint.label.name", name)}
	ctx, span, start := t.op(ctx, "CreateLabel", attrs...)
	v, err := t.inner.CreateLabel(ctx, name)
	t.done(ctx, span, start, err, attrs...)
	return v, err
}
