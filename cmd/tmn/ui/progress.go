package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"tmn/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Progress renders step spans on stderr: a live checklist on a terminal,
// one line per state change otherwise.
type Progress struct {
	provider *sdktrace.TracerProvider
	closeFn  func()
	once     sync.Once
}

func NewProgress() *Progress {
	if IsInteractive() {
		checklist := NewChecklist(os.Stderr)
		return newProgress(checklist.OnSnapshot, checklist.Close)
	}
	lines := newLineOutput(os.Stderr)
	return newProgress(lines.OnSnapshot, func() {})
}

func newProgress(report func(stepSnapshot), closeFn func()) *Progress {
	observer := newStepObserver(report)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&stepSpanProcessor{observer: observer}))
	return &Progress{provider: provider, closeFn: closeFn}
}

func (p *Progress) Tracer(name string) trace.Tracer {
	return p.provider.Tracer(name)
}

// Close flushes the final state. It is safe to call more than once.
func (p *Progress) Close() {
	p.once.Do(func() {
		_ = p.provider.Shutdown(context.Background())
		p.closeFn()
	})
}

type lineOutput struct {
	out      io.Writer
	mu       sync.Mutex
	status   map[string]stepStatus
	messages map[string]string
}

func newLineOutput(out io.Writer) *lineOutput {
	return &lineOutput{
		out:      out,
		status:   make(map[string]stepStatus),
		messages: make(map[string]string),
	}
}

func (l *lineOutput) OnSnapshot(snapshot stepSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, step := range snapshot.Steps {
		if step.Status == stepPending {
			continue
		}
		prev, seen := l.status[step.ID]
		if seen && prev == step.Status && l.messages[step.ID] == step.Message {
			continue
		}
		l.status[step.ID] = step.Status
		l.messages[step.ID] = step.Message
		fmt.Fprintln(l.out, formatStepLine(step))
	}
}

func formatStepLine(step stepState) string {
	prefix := "[..]"
	switch step.Status {
	case stepRunning:
		prefix = "[->]"
	case stepDone:
		prefix = "[ok]"
	case stepFailed:
		prefix = "[x]"
	case stepSkipped:
		prefix = "[--]"
	}
	line := stepIndent(step) + prefix + " " + step.Title
	if step.Message != "" {
		line += " (" + step.Message + ")"
	}
	return line
}

// stepObserver folds span starts and ends into ordered step snapshots.
type stepObserver struct {
	mu     sync.Mutex
	steps  map[string]stepState
	order  []string
	report func(stepSnapshot)
}

func newStepObserver(report func(stepSnapshot)) *stepObserver {
	return &stepObserver{steps: make(map[string]stepState), report: report}
}

func (o *stepObserver) onPlan(plan telemetry.Plan) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, planned := range plan.Steps {
		step := o.ensureLocked(planned.ID)
		step.ParentID = planned.ParentID
		if planned.Title != "" {
			step.Title = planned.Title
		}
		o.steps[step.ID] = step
	}
	o.emitLocked()
}

func (o *stepObserver) onStepStart(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	step := o.ensureLocked(id)
	step.Status = stepRunning
	step.Message = ""
	o.steps[id] = step
	o.emitLocked()
}

// onStepEnd records the outcome. message is the step result on success and
// the error text on failure.
func (o *stepObserver) onStepEnd(id string, failed bool, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	step := o.ensureLocked(id)
	step.Status = stepDone
	if failed {
		step.Status = stepFailed
	}
	step.Message = strings.TrimSpace(message)
	o.steps[id] = step
	o.emitLocked()
}

// onFinish marks planned steps that never ran as skipped.
func (o *stepObserver) onFinish() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, step := range o.steps {
		if step.Status == stepPending {
			step.Status = stepSkipped
			o.steps[id] = step
		}
	}
	o.emitLocked()
}

func (o *stepObserver) ensureLocked(id string) stepState {
	if step, ok := o.steps[id]; ok {
		return step
	}
	parent := ""
	if i := strings.LastIndex(id, "/"); i > 0 {
		parent = id[:i]
	}
	o.order = append(o.order, id)
	return stepState{ID: id, ParentID: parent, Title: id, Status: stepPending}
}

func (o *stepObserver) emitLocked() {
	if o.report == nil {
		return
	}
	children := make(map[string][]stepState)
	for _, step := range o.steps {
		if step.ParentID != "" {
			children[step.ParentID] = append(children[step.ParentID], step)
		}
	}

	steps := make([]stepState, 0, len(o.order))
	for _, id := range o.order {
		step, ok := o.steps[id]
		if !ok {
			continue
		}
		if summary := summarize(children[id]); summary != "" && step.Status != stepSkipped {
			switch {
			case step.Message == "":
				step.Message = summary
			case step.Status == stepFailed:
				step.Message = summary + "; " + step.Message
			}
		}
		steps = append(steps, step)
	}
	o.report(stepSnapshot{Steps: steps})
}

func summarize(children []stepState) string {
	if len(children) == 0 {
		return ""
	}
	var done, failed int
	for _, c := range children {
		switch c.Status {
		case stepDone:
			done++
		case stepFailed:
			failed++
		}
	}
	if failed > 0 {
		return fmt.Sprintf("%d/%d done, %d failed", done, len(children), failed)
	}
	return fmt.Sprintf("%d/%d done", done, len(children))
}

type stepSpanProcessor struct {
	observer *stepObserver
}

func (p *stepSpanProcessor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	if span.Parent().IsValid() {
		p.observer.onStepStart(span.Name())
		return
	}
	raw := attributeValue(span.Attributes(), telemetry.PlanJSONKey)
	if raw == "" {
		return
	}
	var plan telemetry.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return
	}
	p.observer.onPlan(plan)
}

func (p *stepSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if !span.Parent().IsValid() {
		p.observer.onFinish()
		return
	}
	status := span.Status()
	if status.Code == codes.Error {
		p.observer.onStepEnd(span.Name(), true, status.Description)
		return
	}
	p.observer.onStepEnd(span.Name(), false, attributeValue(span.Attributes(), telemetry.ResultKey))
}

func (p *stepSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *stepSpanProcessor) ForceFlush(context.Context) error { return nil }

func attributeValue(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}
