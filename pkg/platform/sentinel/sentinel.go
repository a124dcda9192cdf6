package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and downstream clients return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: entity does not exist in store, or a downstream answered 404
// - ErrConflict: unique constraint hit (e.g. email already registered)
// - ErrUnavailable: store, broker or downstream service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
