// Package fanout runs independent branch calls concurrently, waits for all of
// them, and classifies each result so callers can assemble one response.
//
// A branch never cancels its siblings. Expected absence (downstream "not found")
// resolves to the branch fallback when one is declared; a timeout or any other
// error is a failure. When several branches fail the first one in declaration
// order is reported.
package fanout

import (
	"context"
	"errors"
	"time"

	"microflix/pkg/platform/sentinel"
)

// Call performs one branch. It must honor ctx cancellation.
type Call func(ctx context.Context) (any, error)

// Spec declares one branch of an aggregation.
type Spec struct {
	Name string

	call        Call
	fallback    any
	hasFallback bool
	isAbsent    func(error) bool
	timeout     time.Duration
}

// IsNotFound is the default absence predicate.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func newSpec[T any](name string, call func(context.Context) (T, error)) Spec {
	return Spec{
		Name: name,
		call: func(ctx context.Context) (any, error) {
			v, err := call(ctx)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		isAbsent: IsNotFound,
	}
}

// Required declares a branch without fallback: absence fails the aggregation.
func Required[T any](name string, call func(context.Context) (T, error)) Spec {
	return newSpec(name, call)
}

// Optional declares a branch whose absence resolves to fallback.
func Optional[T any](name string, call func(context.Context) (T, error), fallback T) Spec {
	s := newSpec(name, call)
	s.fallback = fallback
	s.hasFallback = true
	return s
}

// WithTimeout overrides the executor default timeout for this branch.
func (s Spec) WithTimeout(d time.Duration) Spec {
	s.timeout = d
	return s
}

// WithAbsence replaces the predicate deciding which errors mean "no data".
func (s Spec) WithAbsence(isAbsent func(error) bool) Spec {
	if isAbsent != nil {
		s.isAbsent = isAbsent
	}
	return s
}
