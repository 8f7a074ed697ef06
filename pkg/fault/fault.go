// Package fault defines the closed error taxonomy shared by the scrape
// pipeline and its storage layers. Callers branch on Kind, never on message
// text.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// InvalidInput: empty URL/id, non-positive episode number, missing
	// series reference. Reported before any I/O.
	InvalidInput Kind = iota
	// TransportFailure: network error or non-success HTTP status.
	TransportFailure
	// ParseFailure: malformed XML/HTML structure or an unparseable
	// mandatory field.
	ParseFailure
	// NotFound: a series or episode an operation requires is absent.
	NotFound
	// EnrichmentFailure: any failure inside the enrichment stage. The
	// orchestrator downgrades this kind to a warning.
	EnrichmentFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case TransportFailure:
		return "transport_failure"
	case ParseFailure:
		return "parse_failure"
	case NotFound:
		return "not_found"
	case EnrichmentFailure:
		return "enrichment_failure"
	default:
		return "unknown"
	}
}

// Error is a typed pipeline error. Stage names the pipeline stage that
// failed ("fetch_page", "match_title", ...); it may be empty below the
// orchestrator.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := e.Msg
	if e.Stage != "" {
		s = e.Stage + ": " + s
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match against a bare &Error{Kind: k} sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Stage == "" || t.Stage == e.Stage)
}

// New builds a typed error with a formatted message.
func New(k Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: k, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and stage to an underlying error.
func Wrap(k Kind, stage, msg string, err error) *Error {
	return &Error{Kind: k, Stage: stage, Msg: msg, Err: err}
}

// WithStage returns a copy of err carrying the given stage name. Non-fault
// errors are wrapped as-is under the given kind fallback.
func WithStage(err error, stage string, fallback Kind) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return &Error{Kind: fe.Kind, Stage: stage, Msg: fe.Msg, Err: fe.Err}
	}
	return &Error{Kind: fallback, Stage: stage, Msg: "stage failed", Err: err}
}

// KindOf extracts the Kind from err, or ok=false for untyped errors.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
