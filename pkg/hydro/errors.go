package hydro

import (
	"errors"
	"fmt"
)

// ReasonCode classifies why a reach failed validation or extraction.
// Reasons are persisted to the invalid sink as data, not just logged.
type ReasonCode string

const (
	ReasonNone                     ReasonCode = ""
	ReasonMissingAccessPair        ReasonCode = "missing_access_pair"
	ReasonDuplicateAccessPair      ReasonCode = "duplicate_access_pair"
	ReasonNotCoincidentWithNetwork ReasonCode = "not_coincident_with_network"
	ReasonNotUpstreamOfTakeout     ReasonCode = "not_upstream_of_takeout"
	ReasonExtractionNoPath         ReasonCode = "extraction_no_path"
	ReasonExtractionDegenerate     ReasonCode = "extraction_degenerate"
	ReasonExtractionEngineError    ReasonCode = "extraction_engine_error"
	ReasonUnclassifiedException    ReasonCode = "unclassified_exception"
)

// Common sentinel errors
var (
	// ErrNetworkUnavailable means the network engine or data source is
	// unreachable. It is fatal: no reach can be processed without the
	// network, so the whole batch aborts.
	ErrNetworkUnavailable = errors.New("hydro network unavailable")

	ErrDuplicateAccess = errors.New("more than one access point for role")
	ErrMissingAccess   = errors.New("reach lacks a put-in/take-out pair")
	ErrNoPath          = errors.New("no path connects put-in and take-out")
	ErrDegenerate      = errors.New("trimmed hydroline has zero length")
)

// ReachError provides structured error information for reach processing.
type ReachError struct {
	Op      string     // Operation that failed (e.g. "Extract", "TraceUpstream")
	ReachID string     // Reach being processed
	Reason  ReasonCode // Failure classification, if reach-scoped
	Cause   error      // Underlying error
}

// Error implements the error interface.
func (e *ReachError) Error() string {
	if e.ReachID != "" {
		if e.Reason != ReasonNone {
			return fmt.Sprintf("%s reach %s (%s): %v", e.Op, e.ReachID, e.Reason, e.Cause)
		}
		return fmt.Sprintf("%s reach %s: %v", e.Op, e.ReachID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ReachError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *ReachError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building ReachErrors.
type ErrorBuilder struct {
	err ReachError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ReachError{Op: op}}
}

// Reach sets the reach id.
func (b *ErrorBuilder) Reach(id string) *ErrorBuilder {
	b.err.ReachID = id
	return b
}

// Reason sets the failure classification.
func (b *ErrorBuilder) Reason(reason ReasonCode) *ErrorBuilder {
	b.err.Reason = reason
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// IsFatal reports whether an error must abort the whole batch rather than
// being recorded against a single reach.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}
