package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/macro/log"
)

// Manifest is a YAML description of a function set and registry options:
//
//	case_insensitive: false
//	log_level: debug       # trace, debug, info, warn or error
//	log_format: text       # text or json
//	max_depth: 64
//	max_source_length: 1048576
//	syntax:
//	  trigger: "$"
//	  escape: "\\"
//	  open: "["
//	  close: "]"
//	  separator: ";"
//	functions:
//	  - $date             # bare name, brackets never
//	  - name: $join       # brackets and optional default to true
//	    optional: false
//
// Omitted syntax characters keep their [DefaultSyntax] values. An omitted
// max_depth keeps [DefaultMaxDepth]. Registries built from a manifest naming
// a log level or format log to standard error.
type Manifest struct {
	CaseInsensitive bool            `yaml:"case_insensitive"`
	LogLevel        string          `yaml:"log_level"`
	LogFormat       string          `yaml:"log_format"`
	MaxDepth        *int            `yaml:"max_depth"`
	MaxSourceLen    int             `yaml:"max_source_length"`
	Syntax          *ManifestSyntax `yaml:"syntax"`
	Functions       []Descriptor    `yaml:"functions"`
}

// ManifestSyntax holds single-character delimiter overrides.
type ManifestSyntax struct {
	Trigger   string `yaml:"trigger"`
	Escape    string `yaml:"escape"`
	Open      string `yaml:"open"`
	Close     string `yaml:"close"`
	Separator string `yaml:"separator"`
}

// LoadManifest decodes a manifest from r. Unknown keys are rejected. Empty
// input yields an empty manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	m := new(Manifest)

	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())

	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrManifest.Wrap(err)
	}

	return m, nil
}

// Options returns the registry options described by the manifest.
func (m *Manifest) Options() ([]Option, error) {
	opts := []Option{
		WithCaseInsensitive(m.CaseInsensitive),
		WithMaxSourceLen(m.MaxSourceLen),
	}

	if m.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*m.MaxDepth))
	}

	if m.Syntax != nil {
		syntax, err := m.Syntax.resolve()
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithSyntax(syntax))
	}

	if m.LogLevel != "" || m.LogFormat != "" {
		logger, err := m.Logger(os.Stderr)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithLogger(logger))
	}

	return opts, nil
}

// Logger returns a logger writing to w with the manifest's log level and
// format. Omitted keys keep the [log] package defaults.
func (m *Manifest) Logger(w io.Writer) (log.Logger, error) {
	var opts []log.Option

	if m.LogLevel != "" {
		name := strings.ToLower(strings.TrimSpace(m.LogLevel))
		if !slices.Contains(slices.Collect(log.Levels()), name) {
			return log.Logger{}, ErrManifest.With(
				slog.String("key", "log_level"),
				slog.String("value", m.LogLevel),
			)
		}

		opts = append(opts, log.WithLevel(log.ParseLevel(name)))
	}

	if m.LogFormat != "" {
		format := log.ParseFormat(m.LogFormat)
		if !strings.EqualFold(strings.TrimSpace(m.LogFormat), format.String()) {
			return log.Logger{}, ErrManifest.With(
				slog.String("key", "log_format"),
				slog.String("value", m.LogFormat),
			)
		}

		opts = append(opts, log.WithFormat(format))
	}

	return log.Make(w, opts...), nil
}

// Registry builds a registry from the manifest. Options in opts are applied
// after the manifest's own, so they take precedence.
func (m *Manifest) Registry(opts ...Option) (*Registry, error) {
	base, err := m.Options()
	if err != nil {
		return nil, err
	}

	return NewRegistry(m.Functions, append(base, opts...)...)
}

// Register builds a registry from the manifest and installs it as the
// process-wide default. See [Register].
func (m *Manifest) Register(opts ...Option) bool {
	r, err := m.Registry(opts...)
	if err != nil {
		return false
	}

	return Install(r)
}

func (s *ManifestSyntax) resolve() (Syntax, error) {
	syntax := DefaultSyntax

	for _, f := range []struct {
		key string
		val string
		dst *byte
	}{
		{"trigger", s.Trigger, &syntax.Trigger},
		{"escape", s.Escape, &syntax.Escape},
		{"open", s.Open, &syntax.Open},
		{"close", s.Close, &syntax.Close},
		{"separator", s.Separator, &syntax.Separator},
	} {
		switch len(f.val) {
		case 0:
			continue

		case 1:
			*f.dst = f.val[0]

		default:
			return Syntax{}, ErrManifest.With(
				slog.String("key", "syntax."+f.key),
				slog.String("value", f.val),
				slog.String("reason", "expected a single character"),
			)
		}
	}

	return syntax, nil
}

// UnmarshalYAML decodes either a bare name or a mapping with keys name,
// brackets and optional. Omitted flags default to true.
func (d *Descriptor) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any

	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		*d = Bare(v)

		return nil

	case map[string]any:
		name, ok := v["name"].(string)
		if !ok {
			return fmt.Errorf("function entry requires a string name: %v", v)
		}

		brackets, err := flag(v, "brackets")
		if err != nil {
			return err
		}

		optional, err := flag(v, "optional")
		if err != nil {
			return err
		}

		for key := range v {
			switch key {
			case "name", "brackets", "optional":
			default:
				return fmt.Errorf("function %s: unknown key %q", name, key)
			}
		}

		*d = NewDescriptor(name, brackets, optional)

		return nil

	default:
		return fmt.Errorf("function entry must be a name or mapping, got %T", raw)
	}
}

func flag(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return true, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}

	return b, nil
}
