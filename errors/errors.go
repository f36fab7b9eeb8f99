// Package errors is the single error package used across wbwatch.
//
// It re-exports github.com/cockroachdb/errors so every wrap carries a stack
// trace and can be printed with %+v at the top-level catch in the CLI, and it
// defines the sentinels the monitor pipeline classifies failures by.
//
//	if err := store.Save(ctx, name, markers); err != nil {
//	    return errors.Wrapf(err, "failed to persist %s state", name)
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"unicode/utf8"

	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// Hints and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
)

// Inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinels for the monitor pipeline. Wrap them to add context; check with Is.
var (
	// ErrNotConfigured indicates a notification destination is missing or still a placeholder
	ErrNotConfigured = New("destination not configured")

	// ErrTransport indicates an outbound call failed at the transport level after all retries
	ErrTransport = New("transport failure")

	// ErrHTTPStatus indicates a response arrived with a non-2xx status
	ErrHTTPStatus = New("unexpected http status")

	// ErrMalformedResponse indicates a response body could not be decoded into the expected shape
	ErrMalformedResponse = New("malformed response")

	// ErrLocked indicates another run holds the state lock
	ErrLocked = New("state locked by another run")

	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")
)

// IsNotConfigured reports whether err is or wraps ErrNotConfigured.
func IsNotConfigured(err error) bool {
	return err != nil && Is(err, ErrNotConfigured)
}

// IsTransport reports whether err is or wraps ErrTransport.
func IsTransport(err error) bool {
	return err != nil && Is(err, ErrTransport)
}

// NewStatusError builds an ErrHTTPStatus carrying the status code and a
// truncated response body as details.
func NewStatusError(status int, body string) error {
	body = TruncateBody(body)
	err := Wrapf(ErrHTTPStatus, "status %d", status)
	if body != "" {
		err = WithDetail(err, body)
	}
	return err
}

const maxBody = 512

// TruncateBody shortens a response body for errors and logs. The cut never
// splits a UTF-8 sequence.
func TruncateBody(body string) string {
	if len(body) <= maxBody {
		return body
	}
	cut := maxBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
