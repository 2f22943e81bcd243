package lang

import (
	"iter"
	"strconv"
	"strings"
)

// Function is a parsed function call.
type Function struct {
	Name string // Canonical registered name
	ID   string // Opaque id substituted for the call in compiled text
	Pos  int    // Byte offset of the call in source text

	// Bracketed reports whether a field list was consumed. When false, Inside
	// is empty and Fields is nil.
	Bracketed bool

	// Inside is the raw text between the brackets, with escapes resolved and
	// nested calls replaced by their ids. Field separators are kept.
	Inside string

	Fields []*Field
}

// Field is one separator-delimited segment of a function's field list.
type Field struct {
	// Value is the field text with nested calls replaced by their ids.
	Value string

	// Calls holds the functions nested in this field, in source order.
	Calls []*Function
}

// All returns an iterator over f and every function nested in it,
// depth-first in source order.
func (f *Function) All() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		f.walk(yield)
	}
}

func (f *Function) walk(yield func(*Function) bool) bool {
	if !yield(f) {
		return false
	}

	for _, field := range f.Fields {
		for _, call := range field.Calls {
			if !call.walk(yield) {
				return false
			}
		}
	}

	return true
}

// Values returns the field values in order.
func (f *Function) Values() []string {
	values := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		values[i] = field.Value
	}

	return values
}

// Result is the output of one compile run.
type Result struct {
	// Text is the source with every top-level call replaced by its id and
	// escaped calls reduced to their registered name.
	Text string

	// Functions holds the top-level calls in source order.
	Functions []*Function
}

// All returns an iterator over every function in the result, nested calls
// included, depth-first in source order.
func (r *Result) All() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, f := range r.Functions {
			if !f.walk(yield) {
				return
			}
		}
	}
}

// Lookup returns the function, top-level or nested, with the given id.
func (r *Result) Lookup(id string) (*Function, bool) {
	for f := range r.All() {
		if f.ID == id {
			return f, true
		}
	}

	return nil, false
}

const (
	idPrefix = "SYSTEM_FUNCTION("
	idSuffix = ")"
)

// FormatID returns the opaque id of the n-th function of a compile run.
func FormatID(n int) string {
	return idPrefix + strconv.Itoa(n) + idSuffix
}

// ParseID returns the counter embedded in an id produced by [FormatID].
func ParseID(id string) (int, bool) {
	s, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}

	s, ok = strings.CutSuffix(s, idSuffix)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}
