package lang

import (
	"golang.org/x/text/cases"
)

// Occurrence is a raw match of a registered function name in source text.
// Nesting is not resolved; occurrences are consumed in order by the compiler.
type Occurrence struct {
	Name   string        // Canonical registered name
	Text   string        // Matched source text
	Policy BracketPolicy // Resolved bracket policy
	Pos    int           // Byte offset of the match
	Len    int           // Byte length of the match
}

// End returns the byte offset just past the occurrence.
func (o Occurrence) End() int { return o.Pos + o.Len }

// Scan returns every non-overlapping occurrence of a registered name in src,
// in ascending position order.
func (r *Registry) Scan(src string) []Occurrence {
	if r.pattern == nil {
		return nil
	}

	loc := r.pattern.FindAllStringIndex(src, -1)
	if len(loc) == 0 {
		return nil
	}

	var fold cases.Caser
	if r.insensitive {
		fold = cases.Fold()
	}

	occ := make([]Occurrence, len(loc))

	for i, m := range loc {
		text := src[m[0]:m[1]]
		name := r.canonical(text, fold)

		occ[i] = Occurrence{
			Name:   name,
			Text:   text,
			Policy: r.Policy(name),
			Pos:    m[0],
			Len:    m[1] - m[0],
		}
	}

	return occ
}
