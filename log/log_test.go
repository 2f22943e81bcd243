package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}

	if logger.Format() != FormatJSON {
		t.Errorf("expected default format JSON, got %v", logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_ZeroValue_IsSilent(t *testing.T) {
	var logger Logger

	// Must not panic.
	logger.Trace("trace")
	logger.Error("error", slog.String("k", "v"))

	if logger.Level() != DefaultLevel {
		t.Errorf("expected %v, got %v", DefaultLevel, logger.Level())
	}

	if w := logger.With(slog.String("a", "b")); w.Logger != nil {
		t.Error("expected With on zero logger to stay zero")
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		expect bool
	}{
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"trace at debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"debug at debug", LevelDebug, func(l Logger) { l.Debug("msg") }, true},
		{"info at warn", LevelWarn, func(l Logger) { l.Info("msg") }, false},
		{"error at warn", LevelWarn, func(l Logger) { l.Error("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.expect {
				t.Errorf("expected output %v, got %q", tt.expect, buf.String())
			}
		})
	}
}

func TestLogger_TraceLevel_RenderedUppercase(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
	logger.Trace("hello", slog.Int("n", 1))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}

	if record["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", record["level"])
	}

	if _, ok := record["time"]; ok {
		t.Error("expected time attribute to be dropped")
	}

	if record["n"] != float64(1) {
		t.Errorf("expected n=1, got %v", record["n"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout(""))
	logger.Info("text message", slog.String("user", "alice"))

	out := buf.String()
	if !strings.Contains(out, "msg=\"text message\"") ||
		!strings.Contains(out, "user=alice") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("component", "lang"))
	logger.Info("hello")

	if !strings.Contains(buf.String(), `"component":"lang"`) {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}

func TestLogger_Wrap_OverridesConfig(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug), WithFormat(FormatText))

	if base.Level() != LevelError {
		t.Errorf("expected base level unchanged, got %v", base.Level())
	}

	if wrapped.Level() != LevelDebug || wrapped.Format() != FormatText {
		t.Errorf(
			"expected wrapped debug/text, got %v/%v",
			wrapped.Level(),
			wrapped.Format(),
		)
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" warn ", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("TEXT"); got != FormatText {
		t.Errorf("expected text, got %v", got)
	}

	if got := ParseFormat("yaml"); got != DefaultFormat {
		t.Errorf("expected default, got %v", got)
	}
}

func TestLevels_Order(t *testing.T) {
	var got []string
	for name := range Levels() {
		got = append(got, name)
	}

	want := "trace,debug,info,warn,error"
	if strings.Join(got, ",") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(got, ","))
	}
}

func TestWithDefaults_ResetsConfig(t *testing.T) {
	var first, second bytes.Buffer

	custom := Make(&first, WithLevel(LevelError), WithFormat(FormatText), WithCaller(true))
	reset := custom.Wrap(WithDefaults(&second))

	if reset.Level() != DefaultLevel || reset.Format() != DefaultFormat || reset.caller {
		t.Errorf("expected defaults, got %v/%v caller=%v", reset.Level(), reset.Format(), reset.caller)
	}

	reset.Info("hello")

	if first.Len() != 0 || !strings.Contains(second.String(), `"msg":"hello"`) {
		t.Errorf("expected record on the new output only, got %q and %q", first.String(), second.String())
	}

	if silent := Make(nil).Wrap(WithDefaults(nil)); silent.output == nil {
		t.Error("expected nil writer to discard")
	}
}

func TestDefaultContextProvider_UsedByPlainMethods(t *testing.T) {
	saved := DefaultContextProvider
	t.Cleanup(func() { DefaultContextProvider = saved })

	calls := 0
	DefaultContextProvider = func() context.Context {
		calls++

		return context.Background()
	}

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace))
	logger.Trace("a")
	logger.Debug("b")
	logger.Info("c")
	logger.Warn("d")
	logger.Error("e")

	if calls != 5 {
		t.Errorf("expected 5 provider calls, got %d", calls)
	}

	if n := strings.Count(buf.String(), "\n"); n != 5 {
		t.Errorf("expected 5 records, got %d", n)
	}
}
