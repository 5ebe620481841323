package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/restock/pkg/environment"
)

// Format selects the slog handler.
type Format string

const (
	// FormatJSON is for log aggregation in staging and production.
	FormatJSON Format = "json"
	// FormatText is human-readable output for development.
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*options)

type options struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithFormat panics on unknown formats: a misconfigured logger must stop startup.
func WithFormat(f Format) Option {
	return func(o *options) {
		switch f {
		case FormatJSON, FormatText:
			o.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput ignores nil writers.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithContextExtractors adds functions that pull attributes from the
// record's context, such as the request id. Nil extractors are skipped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies per-environment defaults: text/debug for
// development, json/info otherwise. The service and env attributes are added
// to every record.
func WithEnvironment(env environment.Environment, service string) Option {
	return func(o *options) {
		switch env {
		case environment.Production, environment.Staging:
			o.level = slog.LevelInfo
			o.format = FormatJSON
		default:
			o.level = slog.LevelDebug
			o.format = FormatText
		}
		if service != "" {
			o.attrs = append(o.attrs, slog.String("service", service))
		}
		o.attrs = append(o.attrs, slog.String("env", string(env)))
	}
}

// ParseLevel accepts debug, info, warn(ing) and error in any case.
// Anything else yields info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger. Defaults: JSON to stdout at info level.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}

	var h slog.Handler
	if o.format == FormatText {
		h = slog.NewTextHandler(o.output, handlerOpts)
	} else {
		h = slog.NewJSONHandler(o.output, handlerOpts)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}

	return slog.New(NewContextHandler(h, o.extractors...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
