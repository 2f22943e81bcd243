package lang

import (
	"github.com/ardnew/macro/log"
)

// Syntax names the characters that delimit function calls in source text.
// All characters must be distinct ASCII.
type Syntax struct {
	Trigger   byte // Starts a function name, e.g. '$'
	Escape    byte // Suppresses the call or character that follows
	Open      byte // Opens a field list
	Close     byte // Closes a field list
	Separator byte // Separates fields
}

// DefaultSyntax is `$name[field;field]` with backslash escapes.
var DefaultSyntax = Syntax{
	Trigger:   '$',
	Escape:    '\\',
	Open:      '[',
	Close:     ']',
	Separator: ';',
}

func (s Syntax) valid() bool {
	chars := [...]byte{s.Trigger, s.Escape, s.Open, s.Close, s.Separator}
	for i, c := range chars {
		if c == 0 || c >= 0x80 {
			return false
		}

		for _, d := range chars[i+1:] {
			if c == d {
				return false
			}
		}
	}

	return true
}

// DefaultMaxDepth is the default maximum nesting depth of function calls.
// Users may modify this before building a registry to change the default.
var DefaultMaxDepth = 100

// Option configures a [Registry].
type Option func(*Registry)

// WithCaseInsensitive enables case-insensitive matching of function names.
// Matched text is resolved to the registered (canonical) name.
func WithCaseInsensitive(insensitive bool) Option {
	return func(r *Registry) {
		r.insensitive = insensitive
	}
}

// WithSyntax replaces [DefaultSyntax].
func WithSyntax(syntax Syntax) Option {
	return func(r *Registry) {
		r.syntax = syntax
	}
}

// WithMaxDepth bounds the nesting depth of function calls.
// A depth less than 1 removes the bound.
func WithMaxDepth(depth int) Option {
	return func(r *Registry) {
		r.maxDepth = depth
	}
}

// WithMaxSourceLen bounds the length in bytes of compiled source text.
// A length less than 1 removes the bound.
func WithMaxSourceLen(n int) Option {
	return func(r *Registry) {
		r.maxSourceLen = n
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func applyDefaults(r *Registry) {
	r.syntax = DefaultSyntax
	r.maxDepth = DefaultMaxDepth
}

func applyOptions(r *Registry, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
}
