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

	"osassist/internal/config"
)

// Options selects the sinks for New. Console output uses Format; every file
// in FilePaths receives JSON lines.
type Options struct {
	Level     string
	Format    string
	Console   io.Writer
	FilePaths []string
}

// New builds a logger that fans each record out to the console and files.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	sink := sinkOptions{level: level, source: level.Level() <= slog.LevelDebug}

	var handlers []slog.Handler
	if opts.Console != nil {
		h, err := sink.console(opts.Console, opts.Format)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	for _, path := range opts.FilePaths {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		file, err := openAppend(path)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, sink.json(file))
	}
	return slog.New(newFanoutHandler(handlers...)), nil
}

// NewFromConfig logs to stderr and, once a state directory is configured,
// to the panel log file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{Level: "info", Format: "console", Console: os.Stderr}
	if cfg != nil {
		opts.Level, opts.Format = cfg.Logging.Level, cfg.Logging.Format
		if strings.TrimSpace(cfg.Paths.StateDir) != "" {
			opts.FilePaths = []string{cfg.PanelLogPath()}
		}
	}
	return New(opts)
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func parseLevel(level string) slog.Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}

type sinkOptions struct {
	level  *slog.LevelVar
	source bool
}

func (o sinkOptions) console(w io.Writer, format string) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		return &consoleHandler{mu: new(sync.Mutex), w: w, opts: o}, nil
	case "json":
		return o.json(w), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", format)
	}
}

// json renders "ts", lowercase "level" and a short "file:line" source.
func (o sinkOptions) json(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.source,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					return slog.String(slog.SourceKey, shortSource(src))
				}
			}
			return attr
		},
	})
}

func shortSource(src *slog.Source) string {
	return filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
}

// consoleHandler writes "TS LEVEL component: message [file:line] key=value"
// lines. Grouped keys are flattened with dots.
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   sinkOptions
	attrs  []slog.Attr
	groups []string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]slog.Attr(nil), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = flatten(fields, h.groups, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var line strings.Builder
	fmt.Fprintf(&line, "%s %s ", ts.UTC().Format(time.RFC3339), levelLabel(record.Level))

	componentSeen := false
	for _, attr := range fields {
		if attr.Key == FieldComponent && !componentSeen {
			componentSeen = true
			line.WriteString(attr.Value.String() + ": ")
		}
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)
	if src := record.Source(); h.opts.source && src != nil {
		line.WriteString(" [" + shortSource(src) + "]")
	}

	componentSeen = false
	for _, attr := range fields {
		if attr.Key == FieldComponent && !componentSeen {
			componentSeen = true
			continue
		}
		line.WriteString(" " + attr.Key + "=" + consoleValue(attr.Value))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = flatten(next.attrs, h.groups, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// flatten appends attr to dst, expanding groups into dotted keys.
func flatten(dst []slog.Attr, prefix []string, attr slog.Attr) []slog.Attr {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() != slog.KindGroup {
		if len(prefix) > 0 {
			attr.Key = strings.Join(prefix, ".") + "." + attr.Key
		}
		return append(dst, attr)
	}
	inner := prefix
	if attr.Key != "" {
		inner = append(append([]string(nil), prefix...), attr.Key)
	}
	for _, child := range attr.Value.Group() {
		dst = flatten(dst, inner, child)
	}
	return dst
}

func consoleValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
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
	}
	return "DEBUG"
}
