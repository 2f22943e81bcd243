package lang

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/macro/log"
)

// resetDefault clears the process-wide registry for the duration of a test.
func resetDefault(t *testing.T) {
	t.Helper()

	old := defaultRegistry.Swap(nil)

	t.Cleanup(func() { defaultRegistry.Store(old) })
}

func mustRegistry(t testing.TB, descs []Descriptor, opts ...Option) *Registry {
	t.Helper()

	reg, err := NewRegistry(descs, opts...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	return reg
}

func TestNewRegistry_SortsLongestFirst(t *testing.T) {
	reg := mustRegistry(t, []Descriptor{
		Bare("$a"),
		Bracketed("$foo"),
		Bare("$b"),
		Optional("$foobar"),
		Bare("$c"),
	})

	want := []Descriptor{
		Optional("$foobar"),
		Bracketed("$foo"),
		Bare("$a"),
		Bare("$b"),
		Bare("$c"),
	}

	if diff := cmp.Diff(want, reg.Descriptors()); diff != "" {
		t.Errorf("descriptor order mismatch (-want +got):\n%s", diff)
	}

	if got := reg.Pattern(); got != `\$foobar|\$foo|\$a|\$b|\$c` {
		t.Errorf("unexpected pattern %q", got)
	}
}

func TestNewRegistry_DoesNotAliasInput(t *testing.T) {
	descs := []Descriptor{Bare("$x"), Bare("$long")}

	reg := mustRegistry(t, descs)

	if descs[0].Name != "$x" {
		t.Errorf("input slice was reordered: %v", descs)
	}

	got := reg.Descriptors()
	got[0].Name = "$mutated"

	if reg.Descriptors()[0].Name != "$long" {
		t.Error("Descriptors exposed internal state")
	}
}

func TestNewRegistry_Policy(t *testing.T) {
	reg := mustRegistry(t, []Descriptor{
		Bare("$date"),
		Bracketed("$join"),
		Optional("$opt"),
		NewDescriptor("$flags", true, false),
	})

	tests := []struct {
		name string
		want BracketPolicy
	}{
		{"$date", BracketsNever},
		{"$join", BracketsAlways},
		{"$opt", BracketsOptional},
		{"$flags", BracketsAlways},
		{"$unknown", BracketsNever},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Policy(tt.name); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
		opts  []Option
		want  error
	}{
		{
			name:  "empty name",
			descs: []Descriptor{Bare("$ok"), Bare("")},
			want:  ErrInvalidDescriptor,
		},
		{
			name:  "bad policy",
			descs: []Descriptor{{Name: "$x", Policy: BracketPolicy(7)}},
			want:  ErrInvalidDescriptor,
		},
		{
			name:  "duplicate syntax characters",
			descs: []Descriptor{Bare("$x")},
			opts: []Option{WithSyntax(Syntax{
				Trigger: '$', Escape: '$', Open: '[', Close: ']', Separator: ';',
			})},
			want: ErrInvalidSyntax,
		},
		{
			name:  "zero syntax character",
			descs: []Descriptor{Bare("$x")},
			opts:  []Option{WithSyntax(Syntax{Trigger: '$'})},
			want:  ErrInvalidSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.descs, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if reg != nil {
				t.Error("expected nil registry on error")
			}
		})
	}
}

func TestNewRegistry_Empty(t *testing.T) {
	reg := mustRegistry(t, nil)

	if reg.Pattern() != "" {
		t.Errorf("expected empty pattern, got %q", reg.Pattern())
	}

	if occ := reg.Scan("$anything [here]"); len(occ) != 0 {
		t.Errorf("expected no occurrences, got %v", occ)
	}
}

func TestNewRegistry_CaseInsensitive(t *testing.T) {
	reg := mustRegistry(t,
		[]Descriptor{Bare("FOO"), Bracketed("$Join")},
		WithCaseInsensitive(true),
	)

	if !reg.CaseInsensitive() {
		t.Fatal("expected case-insensitive registry")
	}

	if !strings.HasPrefix(reg.Pattern(), "(?i)") {
		t.Errorf("expected (?i) prefix, got %q", reg.Pattern())
	}

	occ := reg.Scan("$foo and $JOIN[x]")
	if len(occ) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occ))
	}

	if occ[0].Name != "FOO" || occ[0].Text != "foo" {
		t.Errorf("expected FOO/foo, got %s/%s", occ[0].Name, occ[0].Text)
	}

	if occ[1].Name != "$Join" || occ[1].Policy != BracketsAlways {
		t.Errorf("expected $Join always, got %s %v", occ[1].Name, occ[1].Policy)
	}
}

func TestNewRegistry_LogsBuild(t *testing.T) {
	var buf bytes.Buffer

	mustRegistry(t,
		[]Descriptor{Bare("$x")},
		WithLogger(log.Make(&buf, log.WithLevel(log.LevelDebug))),
	)

	if !strings.Contains(buf.String(), "registry built") {
		t.Errorf("expected build log record, got %q", buf.String())
	}
}

func TestRegister_OnlyFirstSucceeds(t *testing.T) {
	resetDefault(t)

	if Default() != nil {
		t.Fatal("expected no default registry")
	}

	if !Register([]Descriptor{Bracketed("$join")}) {
		t.Fatal("expected first registration to succeed")
	}

	first := Default()
	pattern := first.Pattern()

	if Register([]Descriptor{Bare("$other")}, WithCaseInsensitive(true)) {
		t.Error("expected second registration to fail")
	}

	if Register(nil) {
		t.Error("expected third registration to fail")
	}

	if Default() != first || Default().Pattern() != pattern {
		t.Error("installed registry changed after a failed registration")
	}

	if Default().CaseInsensitive() {
		t.Error("second registration options leaked into installed registry")
	}
}

func TestRegister_LogsRejection(t *testing.T) {
	resetDefault(t)

	if !Register([]Descriptor{Bare("$x")}) {
		t.Fatal("expected first registration to succeed")
	}

	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatText))

	if Register([]Descriptor{Bare("$y")}, WithLogger(logger)) {
		t.Fatal("expected second registration to fail")
	}

	out := buf.String()
	if !strings.Contains(out, "registration rejected") ||
		!strings.Contains(out, ErrAlreadyRegistered.Error()) {
		t.Errorf("expected rejection log record, got %q", out)
	}
}

func TestRegister_InvalidDescriptorsFail(t *testing.T) {
	resetDefault(t)

	if Register([]Descriptor{Bare("")}) {
		t.Error("expected registration with empty name to fail")
	}

	if Default() != nil {
		t.Error("expected nothing installed")
	}
}

func TestRegister_Concurrent(t *testing.T) {
	resetDefault(t)

	const workers = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			name := "$fn" + strings.Repeat("x", i)
			if Register([]Descriptor{Bare(name)}) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one successful registration, got %d", wins)
	}
}

func TestCompile_UsesDefault(t *testing.T) {
	resetDefault(t)

	if _, err := Compile(t.Context(), "$join[x]", nil); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	if !Register([]Descriptor{Bracketed("$join")}) {
		t.Fatal("registration failed")
	}

	res, err := Compile(t.Context(), "$join[x]", nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if len(res.Functions) != 1 || res.Functions[0].Name != "$join" {
		t.Errorf("unexpected functions: %+v", res.Functions)
	}
}
