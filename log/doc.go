// Package log provides a small leveled logging interface over [log/slog].
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("none"))
//
//	logger.Trace("compile complete", slog.Int("functions", 3))
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Records below the configured level are
// discarded. Trace sits below slog's debug level and is rendered as "TRACE".
//
// The zero [Logger] discards all records, which lets library types carry a
// Logger field that costs nothing until a caller supplies one.
package log
