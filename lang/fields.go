package lang

import (
	"strings"
)

// readFields reads the bracketed field list of o. The cursor must be on the
// opening bracket. Nested calls are parsed recursively when the trigger
// character just read is exactly where the next pending occurrence starts;
// any other trigger character is literal text.
func (c *compiler) readFields(o Occurrence) (*Function, error) {
	c.depth++
	defer func() { c.depth-- }()

	if limit := c.reg.maxDepth; limit > 0 && c.depth > limit {
		return nil, c.fail(ErrMaxDepthExceeded, o)
	}

	fn := c.newFunction(o)
	fn.Bracketed = true

	c.pos++ // skip opening bracket

	var inside, value strings.Builder

	field := new(Field)
	fn.Fields = append(fn.Fields, field)

	closed := false
	escaping := false

scan:
	for !c.eof() {
		ch := c.src[c.pos]
		c.pos++

		switch {
		case escaping:
			inside.WriteByte(ch)
			value.WriteByte(ch)

			escaping = false

		case ch == c.syntax.Escape:
			escaping = true

		case ch == c.syntax.Trigger:
			if !c.headAt(c.pos - 1) {
				inside.WriteByte(ch)
				value.WriteByte(ch)

				continue
			}

			c.pos--

			s, err := c.parseNext(false)
			if err != nil {
				return nil, err
			}

			switch s.kind {
			case stepFunction:
				inside.WriteString(s.fn.ID)
				value.WriteString(s.fn.ID)

				field.Calls = append(field.Calls, s.fn)

			case stepLiteral:
				inside.WriteString(s.literal)
				value.WriteString(s.literal)
			}

		case ch == c.syntax.Close:
			closed = true

			break scan

		case ch == c.syntax.Separator:
			inside.WriteByte(ch)

			field.Value = value.String()
			value.Reset()

			field = new(Field)
			fn.Fields = append(fn.Fields, field)

		default:
			inside.WriteByte(ch)
			value.WriteByte(ch)
		}
	}

	if !closed {
		return nil, c.fail(ErrUnterminatedFunction, o)
	}

	field.Value = value.String()
	fn.Inside = inside.String()

	return fn, nil
}
