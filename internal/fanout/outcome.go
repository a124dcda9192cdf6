package fanout

import (
	"fmt"
	"time"

	dErrors "microflix/pkg/domain-errors"
)

// Kind tags a branch outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindFallback
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFallback:
		return "fallback"
	default:
		return "failure"
	}
}

// Outcome is the settled result of one branch.
type Outcome struct {
	Branch  string
	Kind    Kind
	Value   any
	Err     *BranchError
	Latency time.Duration
}

// FailureKind says why a branch failed.
type FailureKind string

const (
	FailureNotFound   FailureKind = "not_found"
	FailureTimeout    FailureKind = "timeout"
	FailureDownstream FailureKind = "downstream"
)

// BranchError is the failure reported for an aggregation.
type BranchError struct {
	Branch string
	Kind   FailureKind
	Err    error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("branch %s %s: %v", e.Branch, e.Kind, e.Err)
}

func (e *BranchError) Unwrap() error { return e.Err }

func (e *BranchError) DomainCode() dErrors.Code {
	switch e.Kind {
	case FailureNotFound:
		return dErrors.CodeNotFound
	case FailureTimeout:
		return dErrors.CodeTimeout
	default:
		return dErrors.CodeUnavailable
	}
}

// Result holds the value of every branch of a successful aggregation.
type Result struct {
	order    []string
	outcomes map[string]Outcome
}

func newResult(outcomes []Outcome) *Result {
	r := &Result{
		order:    make([]string, 0, len(outcomes)),
		outcomes: make(map[string]Outcome, len(outcomes)),
	}
	for _, o := range outcomes {
		r.order = append(r.order, o.Branch)
		r.outcomes[o.Branch] = o
	}
	return r
}

// Outcome returns the settled outcome of a branch.
func (r *Result) Outcome(name string) (Outcome, bool) {
	o, ok := r.outcomes[name]
	return o, ok
}

// Has reports whether the branch was part of the aggregation.
func (r *Result) Has(name string) bool {
	_, ok := r.outcomes[name]
	return ok
}

// Degraded lists branches that resolved to their fallback, in declaration order.
func (r *Result) Degraded() []string {
	var names []string
	for _, name := range r.order {
		if r.outcomes[name].Kind == KindFallback {
			names = append(names, name)
		}
	}
	return names
}

// Value returns the typed value of a branch. Asking for an undeclared branch or
// the wrong type is a programming error reported as internal.
func Value[T any](r *Result, name string) (T, error) {
	var zero T
	o, ok := r.outcomes[name]
	if !ok {
		return zero, dErrors.New(dErrors.CodeInternal, "unknown branch "+name)
	}
	if o.Value == nil {
		return zero, nil
	}
	v, ok := o.Value.(T)
	if !ok {
		return zero, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("branch %s holds %T", name, o.Value))
	}
	return v, nil
}
