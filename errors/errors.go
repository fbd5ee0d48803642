// Package errors provides error handling for hedval.
//
// This package re-exports github.com/cockroachdb/errors, providing stack
// traces, wrapping with context, and hints, plus the sentinel errors
// shared across the validation core. Non-fatal validation findings are
// not Go errors at all; they accumulate as issues.Issues. Only the fatal
// kinds defined here (a broken schema, an unparseable string) travel as
// errors.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "loading schema")
//	}
//
//	if errors.Is(err, errors.ErrSchemaInvalid) {
//	    // the whole session is unusable
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the validation core. Use with errors.Is; wrap with
// errors.Wrap to add context while preserving the kind.
var (
	// ErrSchemaInvalid indicates a malformed or internally inconsistent
	// schema. Fatal for the whole session: no validation proceeds.
	ErrSchemaInvalid = New("schema invalid")

	// ErrUnbalancedString indicates an annotation string whose
	// parentheses cannot be balanced. Fatal for that one string only.
	ErrUnbalancedString = New("unbalanced annotation string")

	// ErrTagAmbiguous indicates a bare short-form term that resolves to
	// more than one schema node across the active schema set.
	ErrTagAmbiguous = New("ambiguous tag")

	// ErrTagUnknown indicates a term with no match in the active schema
	// set.
	ErrTagUnknown = New("unknown tag")
)

// IsSchemaError checks whether an error is or wraps ErrSchemaInvalid.
func IsSchemaError(err error) bool {
	return err != nil && Is(err, ErrSchemaInvalid)
}

// NewSchemaError creates a schema-invalid error with a formatted message.
func NewSchemaError(format string, args ...interface{}) error {
	return Wrap(ErrSchemaInvalid, Newf(format, args...).Error())
}
