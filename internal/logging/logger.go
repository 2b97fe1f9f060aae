// Package logging provides categorized, structured logging for the rule
// engine: one Category per component (normalizer, catalog, resolver,
// rule store, evaluators, engine orchestrator, correlation, CLI), backed
// by zap so every log line is structured JSON (or human-readable console
// output in dev mode).
//
// Adapted from the teacher's per-category logging package: categories
// become a zap "component" field instead of separate log files, since
// this engine is a library/service, not a desktop app writing to its own
// per-project log directory.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies which component emitted a log line.
type Category string

const (
	CategoryNormalize Category = "normalize"
	CategoryCatalog   Category = "catalog"
	CategoryResolver  Category = "resolver"
	CategoryRules     Category = "rules"
	CategoryEvaluator Category = "evaluator"
	CategoryEngine    Category = "engine"
	CategoryCorrelate Category = "correlate"
	CategoryCLI       Category = "cli"
)

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	loggers = map[Category]*Logger{}
)

// Config controls how Initialize builds the base logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// JSON selects structured JSON output; when false, a human-readable
	// console encoder is used (handy for local `waredge` CLI runs).
	JSON bool
}

// Initialize (re)configures the base zap logger used by every Category
// logger returned from Get. Safe to call more than once (e.g. after
// config reload).
func Initialize(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	zapCfg := zap.NewProductionConfig()
	if !cfg.JSON {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	base = l
	loggers = map[Category]*Logger{}
	return nil
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Logger is a Category-scoped logger. Obtain one via Get.
type Logger struct {
	z *zap.Logger
}

// Get returns the Logger for category, creating and caching it on first
// use.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{z: base.With(zap.String("component", string(category)))}
	loggers[category] = l
	return l
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.z.Debug(fmt.Sprintf(format, args...))
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...))
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, args...))
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.z.Error(fmt.Sprintf(format, args...))
}

// Fields logs msg at info level with structured key/value fields attached
// — used where a single formatted string loses information a downstream
// log processor would want to query on (e.g. rule_id, tenant).
func (l *Logger) Fields(msg string, fields map[string]interface{}) {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	l.z.Info(msg, zf...)
}
