package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
)

// ServiceName is the service field of every entry.
const ServiceName = "sdi"

// Logger is a slog.Logger carrying the service and version fields. One
// instance can be shared by the chassis, telemetry and mqtt packages.
type Logger struct {
	*slog.Logger
}

var outputs = map[string]io.Writer{
	"stdout":  os.Stdout,
	"stderr":  os.Stderr,
	"discard": io.Discard,
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New returns a Logger for the daemon. Unknown outputs fall back to
// stdout, unknown formats to JSON.
func New(cfg config.LoggingConfig, version string) *Logger {
	w, ok := outputs[strings.ToLower(cfg.Output)]
	if !ok {
		w = os.Stdout
	}
	return newWithWriter(w, cfg, version)
}

func newWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}
	h = h.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h)}
}

// parseLevel maps a level name to slog. Unknown names mean info.
func parseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return slog.LevelInfo
}

// With returns a child logger with extra fields, e.g.
//
//	log.With("component", "telemetry").Info("started")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns the logger used before the config is loaded: JSON at
// info level on stderr.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stderr"}, "dev")
}

// NewCommandLogger returns a logger for command-line tools. It writes text
// to a terminal and JSON otherwise, at warn level unless verbose.
func NewCommandLogger(w io.Writer, verbose bool, version string) *Logger {
	cfg := config.LoggingConfig{Level: "warn", Format: "json"}
	if verbose {
		cfg.Level = "debug"
	}
	if isTerminal(w) {
		cfg.Format = "text"
	}
	return newWithWriter(w, cfg, version)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
