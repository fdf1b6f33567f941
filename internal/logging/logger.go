package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"storyreel/internal/config"
)

// FieldComponent is the structured logging key naming the subsystem a
// record came from. The console handler lifts it into the message
// prefix instead of printing it as a key=value pair.
const FieldComponent = "component"

const logFileName = "storyreel.log"

// NewFromConfig builds the process logger: console or JSON per the
// logging section, written to stdout and, when a log directory is
// configured, mirrored to the log file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	out := io.Writer(os.Stdout)

	if cfg != nil {
		level.Set(parseLevel(cfg.Logging.Level))
		if dir := cfg.Paths.LogDir; dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			path := filepath.Join(dir, logFileName)
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", path, err)
			}
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	if cfg != nil && strings.EqualFold(strings.TrimSpace(cfg.Logging.Format), "json") {
		return slog.New(newJSONHandler(out, level)), nil
	}
	return slog.New(newConsoleHandler(out, level)), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newJSONHandler wraps the stdlib JSON handler with this project's key
// names: ts, level (lowercase), msg.
func newJSONHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			}
			return attr
		},
	})
}

// attrPair is one rendered key=value pair. Attrs attached via With are
// rendered once at attachment time rather than on every record.
type attrPair struct {
	key   string
	value string
}

// consoleHandler prints human-oriented single-line records:
//
//	2026-01-02T15:04:05Z INFO matcher: scene matched scene=scene-001
//
// Group keys flatten with dots; values quote only when they need to.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	component string
	prefix    string
	attrs     []attrPair
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	component := h.component
	pairs := make([]attrPair, 0, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldComponent && h.prefix == "" {
			if component == "" {
				component = attr.Value.Resolve().String()
			}
			return true
		}
		renderAttr(&pairs, h.prefix, attr)
		return true
	})

	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	b.WriteByte(' ')
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(record.Message)
	for _, p := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	for _, p := range pairs {
		b.WriteByte(' ')
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]attrPair, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, attr := range attrs {
		if attr.Key == FieldComponent && h.prefix == "" {
			if clone.component == "" {
				clone.component = attr.Value.Resolve().String()
			}
			continue
		}
		renderAttr(&clone.attrs, h.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return &clone
}

// renderAttr appends attr (recursing into groups) as rendered pairs.
func renderAttr(dst *[]attrPair, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	key := attr.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			renderAttr(dst, key, member)
		}
		return
	}
	if key == "" {
		return
	}
	*dst = append(*dst, attrPair{key: key, value: formatValue(attr.Value)})
}

func formatValue(v slog.Value) string {
	var s string
	if err, ok := v.Any().(error); ok {
		s = err.Error()
	} else {
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " =\"") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
