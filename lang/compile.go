package lang

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Compile scans src for registered functions and parses every call.
//
// The returned [Result] holds src with each top-level call replaced by the
// call's opaque id, and the parsed calls themselves. ref is optional context
// for diagnostics: when non-nil its textual form is appended to error
// messages. Compilation is aborted by the first [*CompileError].
func (r *Registry) Compile(
	ctx context.Context,
	src string,
	ref any,
) (*Result, error) {
	if r.maxSourceLen > 0 && len(src) > r.maxSourceLen {
		return nil, ErrSourceTooLarge.With(
			slog.Int("source_length", len(src)),
			slog.Int("max_source_length", r.maxSourceLen),
		)
	}

	c := newCompiler(r, src, ref)
	occurrences := len(c.queue)

	res, err := c.compile()
	if err != nil {
		r.logger.DebugContext(ctx, "compile failed", slog.Any("error", err))

		return nil, err
	}

	r.logger.TraceContext(
		ctx,
		"compile complete",
		slog.Int("source_length", len(src)),
		slog.Int("occurrences", occurrences),
		slog.Int("functions", len(res.Functions)),
		slog.Int("ids", c.nextID),
	)

	return res, nil
}

// compiler holds the state of one compile run.
type compiler struct {
	reg    *Registry
	syntax Syntax
	src    string
	ref    string
	pos    int          // cursor into src
	queue  []Occurrence // pending occurrences, FIFO
	out    strings.Builder
	funcs  []*Function
	nextID int
	depth  int
}

func newCompiler(r *Registry, src string, ref any) *compiler {
	c := &compiler{
		reg:    r,
		syntax: r.syntax,
		src:    src,
		queue:  r.Scan(src),
	}

	if ref != nil {
		c.ref = fmt.Sprint(ref)
	}

	return c
}

func (c *compiler) compile() (*Result, error) {
	if len(c.queue) == 0 {
		return &Result{Text: c.src}, nil
	}

	c.out.Grow(len(c.src))

	for !c.eof() {
		s, err := c.parseNext(true)
		if err != nil {
			return nil, err
		}

		switch s.kind {
		case stepDone:
			c.out.WriteString(c.src[c.pos:])
			c.pos = len(c.src)

		case stepLiteral:
			c.out.WriteString(s.literal)

		case stepFunction:
			c.funcs = append(c.funcs, s.fn)
			c.out.WriteString(s.fn.ID)
		}
	}

	return &Result{Text: c.out.String(), Functions: c.funcs}, nil
}

type stepKind int

const (
	stepDone     stepKind = iota // occurrence queue exhausted
	stepLiteral                  // escaped occurrence, emitted as text
	stepFunction                 // parsed call
)

type step struct {
	kind    stepKind
	literal string
	fn      *Function
}

// parseNext consumes the next queued occurrence. When emit is set, the
// source text between the cursor and the occurrence is written to the
// output first.
func (c *compiler) parseNext(emit bool) (step, error) {
	next, ok := c.dequeue()
	if !ok {
		return step{kind: stepDone}, nil
	}

	escaped := next.Pos > 0 && c.src[next.Pos-1] == c.syntax.Escape

	if emit {
		end := next.Pos
		if escaped {
			end = max(end-1, c.pos)
		}

		c.out.WriteString(c.src[c.pos:end])
	}

	c.pos = next.End()

	// The escape character is dropped and the call is kept as plain text,
	// spelled with its registered name.
	if escaped {
		return step{kind: stepLiteral, literal: next.Name}, nil
	}

	switch next.Policy {
	case BracketsAlways:
		if c.peek() != c.syntax.Open {
			return step{}, c.fail(ErrMissingBrackets, next)
		}

		return c.readFunction(next)

	case BracketsOptional:
		if c.peek() == c.syntax.Open {
			return c.readFunction(next)
		}
	}

	return step{kind: stepFunction, fn: c.newFunction(next)}, nil
}

func (c *compiler) readFunction(o Occurrence) (step, error) {
	fn, err := c.readFields(o)
	if err != nil {
		return step{}, err
	}

	return step{kind: stepFunction, fn: fn}, nil
}

// dequeue pops the next occurrence that has not been passed by the cursor.
// Occurrences behind the cursor were consumed as literal text (e.g. escaped
// inside a field) and are discarded.
func (c *compiler) dequeue() (Occurrence, bool) {
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]

		if next.Pos >= c.pos {
			return next, true
		}
	}

	return Occurrence{}, false
}

// headAt reports whether the next pending occurrence starts at offset,
// discarding any occurrence that starts before it.
func (c *compiler) headAt(offset int) bool {
	for len(c.queue) > 0 && c.queue[0].Pos < offset {
		c.queue = c.queue[1:]
	}

	return len(c.queue) > 0 && c.queue[0].Pos == offset
}

func (c *compiler) newFunction(o Occurrence) *Function {
	fn := &Function{
		Name: o.Name,
		ID:   FormatID(c.nextID),
		Pos:  o.Pos,
	}

	c.nextID++

	return fn
}

func (c *compiler) fail(kind *Error, o Occurrence) error {
	return &CompileError{
		Kind:      kind,
		Name:      o.Name,
		Position:  PositionOf(c.src, o.Pos),
		Reference: c.ref,
	}
}

// Helper methods

func (c *compiler) peek() byte {
	if c.eof() {
		return 0
	}

	return c.src[c.pos]
}

func (c *compiler) eof() bool {
	return c.pos >= len(c.src)
}
