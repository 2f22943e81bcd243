package lang

// BracketPolicy governs whether a function's name must, must not, or may be
// followed by a bracketed field list.
type BracketPolicy int

const (
	// BracketsNever ignores any bracket following the function name.
	BracketsNever BracketPolicy = iota

	// BracketsAlways requires an opening bracket right after the name.
	BracketsAlways

	// BracketsOptional reads fields only when an opening bracket follows.
	BracketsOptional
)

// String returns a string representation of the bracket policy.
func (p BracketPolicy) String() string {
	switch p {
	case BracketsNever:
		return "never"

	case BracketsAlways:
		return "always"

	case BracketsOptional:
		return "optional"

	default:
		return "unknown"
	}
}

// Descriptor registers one function token. Name is matched literally,
// including its trigger character (e.g. "$join").
type Descriptor struct {
	Name   string
	Policy BracketPolicy
}

// Bare returns a descriptor for a function that never takes brackets.
func Bare(name string) Descriptor {
	return Descriptor{Name: name, Policy: BracketsNever}
}

// Bracketed returns a descriptor for a function that requires brackets.
func Bracketed(name string) Descriptor {
	return Descriptor{Name: name, Policy: BracketsAlways}
}

// Optional returns a descriptor for a function whose brackets are optional.
func Optional(name string) Descriptor {
	return Descriptor{Name: name, Policy: BracketsOptional}
}

// NewDescriptor derives the bracket policy from the brackets and optional
// flags: no brackets means [BracketsNever]; brackets that are optional mean
// [BracketsOptional]; otherwise [BracketsAlways].
func NewDescriptor(name string, brackets, optional bool) Descriptor {
	switch {
	case !brackets:
		return Bare(name)

	case optional:
		return Optional(name)

	default:
		return Bracketed(name)
	}
}

// BareNames returns a bare descriptor for each name.
func BareNames(names ...string) []Descriptor {
	descs := make([]Descriptor, len(names))
	for i, name := range names {
		descs[i] = Bare(name)
	}

	return descs
}
