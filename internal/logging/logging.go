// Package logging provides the leveled loggers used across nbslides, backed by
// go-logger.
package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract. Messages take alternating
// key/value arguments.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// Config captures the logger options exposed through the config file and
// the global flags.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Levels lists the accepted level names.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

// Formats lists the accepted output formats.
var Formats = []string{"console", "json", "pretty"}

// Provider hands out named loggers sharing one go-logger root.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider constructs a provider from cfg. An empty format selects the
// console logger.
func NewProvider(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	} else if strings.TrimSpace(cfg.Level) != "" {
		return nil, fmt.Errorf("unsupported log level %q", cfg.Level)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &Provider{root: glog.NewLogger(options...)}, nil
}

// GetLogger returns the logger for a named component. A nil provider yields
// a no-op logger.
func (p *Provider) GetLogger(name string) Logger {
	if p == nil {
		return NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

// ResolveLevel picks the effective level: --debug wins over --verbose, which
// wins over the configured level.
func ResolveLevel(configured string, verbose, debug bool) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	default:
		return configured
	}
}

// ValidLevel reports whether level names a supported log level.
func ValidLevel(level string) bool {
	return normalizeLevel(level) != ""
}

// ValidFormat reports whether format names a supported output format.
func ValidFormat(format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

func wrap(inner glog.Logger) Logger {
	if inner == nil {
		return NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return wrap(with.WithFields(cloneFields(fields)))
	}
	return &fieldsAdapter{inner: l, args: sortedArgs(fields)}
}

func (l *adapter) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

// fieldsAdapter prepends fixed key/value pairs for loggers that cannot carry
// fields themselves.
type fieldsAdapter struct {
	inner Logger
	args  []any
}

func (l *fieldsAdapter) with(args []any) []any {
	return append(append([]any(nil), l.args...), args...)
}

func (l *fieldsAdapter) Trace(msg string, args ...any) { l.inner.Trace(msg, l.with(args)...) }
func (l *fieldsAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, l.with(args)...) }
func (l *fieldsAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, l.with(args)...) }
func (l *fieldsAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.with(args)...) }
func (l *fieldsAdapter) Error(msg string, args ...any) { l.inner.Error(msg, l.with(args)...) }

func (l *fieldsAdapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &fieldsAdapter{inner: l.inner, args: append(l.with(nil), sortedArgs(fields)...)}
}

func (l *fieldsAdapter) WithContext(ctx context.Context) Logger {
	return &fieldsAdapter{inner: l.inner.WithContext(ctx), args: l.args}
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return copied
}

func sortedArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}
