package lang

import (
	"strconv"
	"unicode/utf8"
)

// Position locates a byte offset in source text for diagnostics.
type Position struct {
	Offset int // Byte offset
	Line   int // 1-based line number
	Column int // Characters on the line up to and including the target
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// PositionOf counts lines and columns over src up to and including the
// character at offset. Each newline increments the line and resets the
// column to 0; any other character increments the column. Offsets outside
// src are clamped.
func PositionOf(src string, offset int) Position {
	offset = min(max(offset, 0), len(src))

	pos := Position{Offset: offset, Line: 1}

	// Include the character at offset itself, if any.
	limit := offset
	if offset < len(src) {
		_, size := utf8.DecodeRuneInString(src[offset:])
		limit += size
	}

	for _, r := range src[:limit] {
		if r == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column++
		}
	}

	return pos
}
