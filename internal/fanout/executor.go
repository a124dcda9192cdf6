package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	dErrors "microflix/pkg/domain-errors"
)

const defaultBranchTimeout = 2 * time.Second

// Executor runs branch sets. It is safe for concurrent use.
type Executor struct {
	defaultTimeout time.Duration
	metrics        *Metrics
	tracer         trace.Tracer
	logger         *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.defaultTimeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

func New(opts ...Option) *Executor {
	e := &Executor{
		defaultTimeout: defaultBranchTimeout,
		tracer:         otel.Tracer("microflix/internal/fanout"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts every branch concurrently and waits for all of them to settle.
// It returns the first failure in declaration order, or the combined result.
func (e *Executor) Run(ctx context.Context, specs ...Spec) (*Result, error) {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Name == "" || s.call == nil {
			return nil, dErrors.New(dErrors.CodeInternal, "branch needs a name and a call")
		}
		if _, dup := seen[s.Name]; dup {
			return nil, dErrors.New(dErrors.CodeInternal, "duplicate branch "+s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	// One slot per branch; each goroutine writes only its own index.
	outcomes := make([]Outcome, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			outcomes[i] = e.runBranch(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Kind == KindFailure {
			return nil, o.Err
		}
	}
	return newResult(outcomes), nil
}

type callResult struct {
	value any
	err   error
}

func (e *Executor) runBranch(ctx context.Context, spec Spec) Outcome {
	timeout := spec.timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "fanout."+spec.Name,
		trace.WithAttributes(attribute.String("fanout.branch", spec.Name)))
	defer span.End()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- callResult{err: fmt.Errorf("branch panicked: %v", rec)}
			}
		}()
		v, err := spec.call(ctx)
		done <- callResult{value: v, err: err}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = callResult{err: ctx.Err()}
	}

	out := classify(spec, res)
	out.Latency = time.Since(start)

	span.SetAttributes(attribute.String("fanout.outcome", out.Kind.String()))
	if out.Kind == KindFailure {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(out.Err.Kind))
	}
	e.metrics.ObserveBranch(spec.Name, out.Kind, out.Latency)
	if e.logger != nil {
		attrs := []any{"branch", spec.Name, "outcome", out.Kind.String(), "latency_ms", out.Latency.Milliseconds()}
		if out.Err != nil {
			attrs = append(attrs, "error", out.Err)
		}
		e.logger.DebugContext(ctx, "branch settled", attrs...)
	}
	return out
}

func classify(spec Spec, res callResult) Outcome {
	out := Outcome{Branch: spec.Name}
	switch {
	case res.err == nil:
		out.Kind = KindSuccess
		out.Value = res.value
	case errors.Is(res.err, context.DeadlineExceeded):
		out.Kind = KindFailure
		out.Err = &BranchError{Branch: spec.Name, Kind: FailureTimeout, Err: res.err}
	case spec.isAbsent(res.err) && spec.hasFallback:
		out.Kind = KindFallback
		out.Value = spec.fallback
	case spec.isAbsent(res.err):
		out.Kind = KindFailure
		out.Err = &BranchError{Branch: spec.Name, Kind: FailureNotFound, Err: res.err}
	default:
		out.Kind = KindFailure
		out.Err = &BranchError{Branch: spec.Name, Kind: FailureDownstream, Err: res.err}
	}
	return out
}
