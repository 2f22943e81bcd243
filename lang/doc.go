// Package lang extracts function calls from free-form text.
//
// A [Registry] holds the set of recognized function names, such as "$date"
// or "$join", and the bracket policy of each. Compiling text against a
// registry replaces every recognized call with an opaque id and returns the
// parsed calls, which callers interpret by id. Nothing is evaluated.
//
// # Syntax
//
// With [DefaultSyntax]:
//
//	$name                  call without fields
//	$name[a;b;c]           call with three fields
//	$outer[x $inner[y] z]  nested call inside a field
//	\$name                 literal text "$name", no call
//	$name[a\;b]            one field "a;b"
//
// Whether a name accepts a field list is decided by its [BracketPolicy]:
// [BracketsNever] leaves any following bracket as plain text,
// [BracketsAlways] makes a missing bracket an error, and [BracketsOptional]
// reads fields only when a bracket follows.
//
// # Example
//
//	reg, err := lang.NewRegistry([]lang.Descriptor{
//		lang.Bare("$date"),
//		lang.Bracketed("$join"),
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := reg.Compile(ctx, "$join[a;$date] at $date", "greeting.txt")
//	// res.Text      == "SYSTEM_FUNCTION(0) at SYSTEM_FUNCTION(2)"
//	// res.Functions == [$join{a, SYSTEM_FUNCTION(1)}, $date]
//
// # Matching
//
// Names are matched literally anywhere in the text, longest name first, so
// "$foobar" is never read as "$foo" followed by "bar". The whole text is
// scanned once up front; nested calls are recognized by position as fields
// are read, which keeps compilation linear in the length of the text.
//
// # Registration
//
// Registries are immutable and may be shared by concurrent compile runs.
// [Register] installs a process-wide default used by [Compile]; only the
// first registration takes effect.
package lang
