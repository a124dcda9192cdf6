package fanout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/sentinel"
)

func value[T any](v T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) { return v, nil }
}

func fail[T any](err error) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

func delayed[T any](d time.Duration, v T, err error) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		select {
		case <-time.After(d):
			return v, err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
}

func TestRun_AllSucceed(t *testing.T) {
	exec := New()

	res, err := exec.Run(context.Background(),
		Required("movie", value("The Matrix")),
		Optional("count", value(int64(3)), 0),
	)
	require.NoError(t, err)

	title, err := Value[string](res, "movie")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", title)

	count, err := Value[int64](res, "count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Empty(t, res.Degraded())
}

func TestRun_AbsenceUsesFallback(t *testing.T) {
	exec := New()

	res, err := exec.Run(context.Background(),
		Required("movie", value("The Matrix")),
		Optional("rating", fail[*float64](notFound("rating")), nil),
		Optional("watchlist", fail[bool](notFound("watchlist")), false),
	)
	require.NoError(t, err)

	rating, err := Value[*float64](res, "rating")
	require.NoError(t, err)
	assert.Nil(t, rating)

	inList, err := Value[bool](res, "watchlist")
	require.NoError(t, err)
	assert.False(t, inList)

	assert.Equal(t, []string{"rating", "watchlist"}, res.Degraded())
	o, ok := res.Outcome("rating")
	require.True(t, ok)
	assert.Equal(t, KindFallback, o.Kind)
}

func TestRun_RequiredAbsenceFails(t *testing.T) {
	exec := New()

	_, err := exec.Run(context.Background(),
		Required("movie", fail[string](notFound("movie 999"))),
		Optional("summary", value(1), 0),
	)

	var be *BranchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "movie", be.Branch)
	assert.Equal(t, FailureNotFound, be.Kind)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	code, _ := dErrors.Resolve(err)
	assert.Equal(t, dErrors.CodeNotFound, code)
}

func TestRun_UnexpectedErrorIsNotAbsence(t *testing.T) {
	exec := New()

	_, err := exec.Run(context.Background(),
		Required("movie", value("The Matrix")),
		Optional("summary", fail[int](errors.New("status 500")), 0),
	)

	var be *BranchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "summary", be.Branch)
	assert.Equal(t, FailureDownstream, be.Kind)
	code, _ := dErrors.Resolve(err)
	assert.Equal(t, dErrors.CodeUnavailable, code)
}

func TestRun_TimeoutIsFailureNotAbsence(t *testing.T) {
	exec := New(WithDefaultTimeout(time.Second))

	ignoresContext := func(context.Context) (int, error) {
		time.Sleep(300 * time.Millisecond)
		return 1, nil
	}

	start := time.Now()
	_, err := exec.Run(context.Background(),
		Optional("summary", ignoresContext, 0).WithTimeout(20*time.Millisecond),
	)
	elapsed := time.Since(start)

	var be *BranchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, FailureTimeout, be.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 250*time.Millisecond)
	code, _ := dErrors.Resolve(err)
	assert.Equal(t, dErrors.CodeTimeout, code)
}

func TestRun_BranchesRunConcurrently(t *testing.T) {
	exec := New()
	const latency = 100 * time.Millisecond

	start := time.Now()
	res, err := exec.Run(context.Background(),
		Required("a", delayed(latency, 1, nil)),
		Required("b", delayed(latency, 2, nil)),
		Required("c", delayed(latency, 3, nil)),
		Required("d", delayed(latency, 4, nil)),
	)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 3*latency, "elapsed should be near the slowest branch, not the sum")
	for name, want := range map[string]int{"a": 1, "b": 2, "c": 3, "d": 4} {
		got, err := Value[int](res, name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRun_FirstFailureInDeclarationOrder(t *testing.T) {
	exec := New()

	_, err := exec.Run(context.Background(),
		Required("slow", delayed(80*time.Millisecond, 0, errors.New("slow broke"))),
		Required("fast", fail[int](errors.New("fast broke"))),
	)

	var be *BranchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "slow", be.Branch)
}

func TestRun_FailureDoesNotCancelSiblings(t *testing.T) {
	exec := New()
	var siblingErr atomic.Value

	sibling := func(ctx context.Context) (int, error) {
		time.Sleep(50 * time.Millisecond)
		siblingErr.Store(fmt.Sprint(ctx.Err()))
		return 1, nil
	}

	_, err := exec.Run(context.Background(),
		Required("broken", fail[int](errors.New("boom"))),
		Required("sibling", sibling),
	)
	require.Error(t, err)
	assert.Equal(t, "<nil>", siblingErr.Load())
}

func TestRun_PanicIsFailure(t *testing.T) {
	exec := New()

	_, err := exec.Run(context.Background(),
		Required("movie", func(context.Context) (string, error) { panic("nil map") }),
	)
	var be *BranchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, FailureDownstream, be.Kind)
}

func TestRun_RejectsInvalidBranchSets(t *testing.T) {
	exec := New()
	var calls atomic.Int32
	counted := func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}

	_, err := exec.Run(context.Background(), Required("a", counted), Required("a", counted))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = exec.Run(context.Background(), Required("", counted))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	assert.Zero(t, calls.Load())
}

func TestRun_EmptyBranchSet(t *testing.T) {
	res, err := New().Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Has("movie"))
}

func TestValue_Misuse(t *testing.T) {
	res, err := New().Run(context.Background(), Required("movie", value("The Matrix")))
	require.NoError(t, err)

	_, err = Value[int](res, "movie")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = Value[string](res, "summary")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestRun_CustomAbsencePredicate(t *testing.T) {
	errGone := errors.New("gone")
	res, err := New().Run(context.Background(),
		Optional("summary", fail[int](errGone), -1).WithAbsence(func(err error) bool { return errors.Is(err, errGone) }),
	)
	require.NoError(t, err)
	v, err := Value[int](res, "summary")
	require.NoError(t, err)
	assert.Equal(t, -1, v)
}

func TestRun_Instrumentation(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exec := New(WithMetrics(metrics), WithTracer(tp.Tracer("test")), WithLogger(logger))
	_, err := exec.Run(context.Background(),
		Required("movie", value("The Matrix")),
		Optional("summary", fail[int](notFound("summary")), 0),
	)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.BranchOutcomes.WithLabelValues("movie", "success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.BranchOutcomes.WithLabelValues("summary", "fallback")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	names := []string{spans[0].Name(), spans[1].Name()}
	assert.ElementsMatch(t, []string{"fanout.movie", "fanout.summary"}, names)

	assert.Contains(t, logs.String(), "branch=summary outcome=fallback")
}
