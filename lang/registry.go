package lang

import (
	"cmp"
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"

	"github.com/ardnew/macro/log"
)

// Registry is the immutable set of recognized functions and the pattern
// derived from them. Build one with [NewRegistry]; it is safe for concurrent
// use by any number of compile runs.
type Registry struct {
	descs        []Descriptor             // sorted by name length, longest first
	policy       map[string]BracketPolicy // names whose policy is not never
	folded       map[string]string        // case-folded name -> canonical name
	pattern      *regexp.Regexp           // nil when no descriptors
	syntax       Syntax
	insensitive  bool
	maxDepth     int
	maxSourceLen int
	logger       log.Logger
}

// NewRegistry builds a registry from descs.
//
// Descriptors are ordered by name length, longest first (stable on ties), so
// that a name which is a prefix of another never shadows it in the match
// pattern.
func NewRegistry(descs []Descriptor, opts ...Option) (*Registry, error) {
	r := new(Registry)

	applyDefaults(r)
	applyOptions(r, opts...)

	if !r.syntax.valid() {
		return nil, ErrInvalidSyntax.With(
			slog.String("syntax", string([]byte{
				r.syntax.Trigger,
				r.syntax.Escape,
				r.syntax.Open,
				r.syntax.Close,
				r.syntax.Separator,
			})),
		)
	}

	r.descs = slices.Clone(descs)

	for i, d := range r.descs {
		if d.Name == "" {
			return nil, ErrInvalidDescriptor.With(
				slog.Int("index", i),
				slog.String("reason", "empty name"),
			)
		}

		if d.Policy < BracketsNever || d.Policy > BracketsOptional {
			return nil, ErrInvalidDescriptor.With(
				slog.String("name", d.Name),
				slog.Int("policy", int(d.Policy)),
			)
		}
	}

	slices.SortStableFunc(r.descs, func(a, b Descriptor) int {
		return cmp.Compare(len(b.Name), len(a.Name))
	})

	r.policy = make(map[string]BracketPolicy)

	for _, d := range r.descs {
		if d.Policy != BracketsNever {
			r.policy[d.Name] = d.Policy
		}
	}

	if r.insensitive {
		fold := cases.Fold()
		r.folded = make(map[string]string, len(r.descs))

		for _, d := range r.descs {
			key := fold.String(d.Name)
			if _, ok := r.folded[key]; !ok {
				r.folded[key] = d.Name
			}
		}
	}

	if len(r.descs) > 0 {
		alt := make([]string, len(r.descs))
		for i, d := range r.descs {
			alt[i] = regexp.QuoteMeta(d.Name)
		}

		expr := strings.Join(alt, "|")
		if r.insensitive {
			expr = "(?i)" + expr
		}

		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, ErrInvalidDescriptor.Wrap(err)
		}

		r.pattern = pattern
	}

	r.logger.DebugContext(
		context.Background(),
		"registry built",
		slog.Int("functions", len(r.descs)),
		slog.Int("bracketed", len(r.policy)),
		slog.Bool("case_insensitive", r.insensitive),
	)

	return r, nil
}

// Descriptors returns a copy of the registered descriptors in match order.
func (r *Registry) Descriptors() []Descriptor {
	return slices.Clone(r.descs)
}

// Pattern returns the source of the match pattern, or "" if no function is
// registered.
func (r *Registry) Pattern() string {
	if r.pattern == nil {
		return ""
	}

	return r.pattern.String()
}

// Policy returns the bracket policy of the function with canonical name.
// Unknown names report [BracketsNever].
func (r *Registry) Policy(name string) BracketPolicy {
	if p, ok := r.policy[name]; ok {
		return p
	}

	return BracketsNever
}

// CaseInsensitive reports whether names are matched case-insensitively.
func (r *Registry) CaseInsensitive() bool { return r.insensitive }

// Syntax returns the delimiter characters.
func (r *Registry) Syntax() Syntax { return r.syntax }

// MaxDepth returns the nesting bound, or 0 when unbounded.
func (r *Registry) MaxDepth() int { return max(r.maxDepth, 0) }

// canonical maps matched text to the registered name. In exact-case mode the
// matched text is the name.
func (r *Registry) canonical(matched string, fold cases.Caser) string {
	if !r.insensitive {
		return matched
	}

	if name, ok := r.folded[fold.String(matched)]; ok {
		return name
	}

	// Full case folding can disagree with the simple folding used by the
	// regexp engine; fall back to the engine's notion of equality.
	for _, d := range r.descs {
		if strings.EqualFold(d.Name, matched) {
			return d.Name
		}
	}

	return matched
}

var defaultRegistry atomic.Pointer[Registry]

// Register builds a registry from descs and installs it as the process-wide
// default used by [Compile].
//
// Only the first successful call installs a registry. Any later call returns
// false, logs [ErrAlreadyRegistered] at debug level to the registry's logger,
// and leaves the installed registry untouched; concurrent calls are resolved
// by a single compare-and-swap. Invalid descriptors also yield false.
func Register(descs []Descriptor, opts ...Option) bool {
	r, err := NewRegistry(descs, opts...)
	if err != nil {
		return false
	}

	return Install(r)
}

// Install sets r as the process-wide default if none is installed yet.
func Install(r *Registry) bool {
	if r == nil {
		return false
	}

	if !defaultRegistry.CompareAndSwap(nil, r) {
		r.logger.Debug(
			"registration rejected",
			slog.Any("error", ErrAlreadyRegistered),
		)

		return false
	}

	return true
}

// Default returns the installed process-wide registry, or nil.
func Default() *Registry {
	return defaultRegistry.Load()
}

// Compile compiles src with the process-wide default registry.
// See [Registry.Compile].
func Compile(ctx context.Context, src string, ref any) (*Result, error) {
	r := Default()
	if r == nil {
		return nil, ErrNotRegistered
	}

	return r.Compile(ctx, src, ref)
}
