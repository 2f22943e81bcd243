package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrAlreadyRegistered    = NewError("registry already installed")
	ErrNotRegistered        = NewError("no registry installed")
	ErrInvalidDescriptor    = NewError("invalid function descriptor")
	ErrInvalidSyntax        = NewError("invalid syntax characters")
	ErrMissingBrackets      = NewError("missing brackets")
	ErrUnterminatedFunction = NewError("unterminated function")
	ErrMaxDepthExceeded     = NewError("maximum nesting depth exceeded")
	ErrSourceTooLarge       = NewError("source exceeds maximum length")
	ErrReadInput            = NewError("failed to read input")
	ErrManifest             = NewError("invalid manifest")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "".
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, so that
// errors.Is(ErrReadInput.Wrap(err), ErrReadInput) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		base:  e.root(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// CompileError is a fatal diagnostic raised while compiling source text.
// It locates the offending function occurrence and unwraps to the sentinel
// describing the failure (e.g. [ErrMissingBrackets]).
type CompileError struct {
	Kind      *Error   // Sentinel describing the failure
	Name      string   // Canonical name of the offending function
	Position  Position // Location of the function occurrence
	Reference string   // Caller-supplied context, may be empty
}

// Error formats the diagnostic as
// "<description> at <line>:<column> [(from <reference>)]".
func (e *CompileError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.description())
	sb.WriteString(" at ")
	sb.WriteString(strconv.Itoa(e.Position.Line))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(e.Position.Column))

	if e.Reference != "" {
		sb.WriteString(" (from ")
		sb.WriteString(e.Reference)
		sb.WriteByte(')')
	}

	return sb.String()
}

func (e *CompileError) description() string {
	switch e.Kind {
	case ErrMissingBrackets:
		return e.Name + " requires brackets"

	case ErrUnterminatedFunction:
		return e.Name + " is missing closure bracket"

	case ErrMaxDepthExceeded:
		return e.Name + " exceeds maximum nesting depth"

	default:
		if e.Kind == nil {
			return e.Name
		}

		return fmt.Sprintf("%s: %s", e.Name, e.Kind.msg)
	}
}

// Unwrap returns the sentinel kind.
func (e *CompileError) Unwrap() error {
	if e.Kind == nil {
		return nil
	}

	return e.Kind
}

// LogValue implements slog.LogValuer.
func (e *CompileError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Error()),
		slog.String("function", e.Name),
		slog.Int("offset", e.Position.Offset),
		slog.Int("line", e.Position.Line),
		slog.Int("column", e.Position.Column),
	}

	if e.Reference != "" {
		attrs = append(attrs, slog.String("reference", e.Reference))
	}

	return slog.GroupValue(attrs...)
}

// AsCompileError reports whether err is or wraps a [*CompileError].
func AsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError

	ok := errors.As(err, &ce)

	return ce, ok
}
