package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tmn"
	"tmn/internal/masternode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ masternode.Notifier = (*Operation)(nil)

// Operation is a masternode.Notifier that records progress as spans.
// Steps run one at a time, so at most one section and one step span are open.
type Operation struct {
	ctx    context.Context
	tracer trace.Tracer
	root   trace.Span

	sectionID  string
	sectionCtx context.Context
	section    trace.Span
	step       trace.Span
}

// Begin starts the root span for operation and attaches plan to it.
func Begin(ctx context.Context, tracer trace.Tracer, operation string, plan Plan) (*Operation, error) {
	if tracer == nil {
		return nil, fmt.Errorf("begin telemetry operation: tracer is required")
	}
	if err := validatePlan(plan); err != nil {
		return nil, fmt.Errorf("begin telemetry operation: %w", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("begin telemetry operation: marshal plan: %w", err)
	}

	spanCtx, span := tracer.Start(ctx, RootSpanName(operation), trace.WithAttributes(
		attribute.String(PlanJSONKey, string(planJSON)),
	))
	span.AddEvent(PlanEventName)
	return &Operation{ctx: spanCtx, tracer: tracer, root: span}, nil
}

// RootSpanName names the span that wraps a whole operation. It never
// collides with a section ID.
func RootSpanName(operation string) string {
	return "tmn " + operation
}

// Context carries the root span.
func (o *Operation) Context() context.Context {
	if o == nil {
		return context.Background()
	}
	return o.ctx
}

func (o *Operation) ResourceStep(kind masternode.ResourceKind, name string) {
	o.beginStep(resourceSection(kind), name,
		attribute.String(ResourceKindKey, string(kind)),
		attribute.String(ResourceNameKey, name),
	)
}

func (o *Operation) StepResult(result masternode.StepResult) {
	o.endStep(string(result))
}

func (o *Operation) ContainerStep(intent masternode.Intent, name string) {
	o.beginStep(intentSection(intent), name,
		attribute.String(ResourceKindKey, string(masternode.KindContainer)),
		attribute.String(ResourceNameKey, name),
	)
}

func (o *Operation) StatusResult(status tmn.ContainerStatus) {
	o.endStep(status.String())
}

func (o *Operation) SectionBoundary() {
	o.endStep("")
	if o.section != nil {
		o.section.End()
		o.section, o.sectionID, o.sectionCtx = nil, "", nil
	}
}

// End closes whatever is still open. A non-nil err marks the open step,
// its section and the root span as failed.
func (o *Operation) End(err error) {
	if o == nil {
		return
	}
	if err != nil {
		for _, span := range []trace.Span{o.step, o.section, o.root} {
			fail(span, err)
		}
	}
	o.SectionBoundary()
	o.root.End()
}

func (o *Operation) beginStep(section, name string, attrs ...attribute.KeyValue) {
	o.endStep("")
	if o.sectionID != section {
		o.SectionBoundary()
		o.sectionCtx, o.section = o.tracer.Start(o.ctx, section)
		o.sectionID = section
	}
	_, o.step = o.tracer.Start(o.sectionCtx, StepID(section, name), trace.WithAttributes(attrs...))
}

func (o *Operation) endStep(result string) {
	if o.step == nil {
		return
	}
	if result != "" {
		o.step.SetAttributes(attribute.String(ResultKey, result))
	}
	o.step.End()
	o.step = nil
}

func fail(span trace.Span, err error) {
	if span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
}
