package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger writes GORM output through zap. Statements go out at debug,
// slow statements at warn and failed statements at error, each gated by the
// GORM log level.
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slow          time.Duration
	quietNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow statement threshold; zero disables slow logs
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slow = threshold
	}
}

// WithRecordNotFound reports gorm.ErrRecordNotFound as a failed statement.
// By default a missing task is an expected outcome and is not logged as an error.
func WithRecordNotFound() GormLoggerOption {
	return func(l *GormLogger) {
		l.quietNotFound = false
	}
}

// NewGormLogger creates a GORM logger under the "gorm" name of base
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		base:          base.Named("gorm"),
		level:         level,
		slow:          200 * time.Millisecond,
		quietNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	lvl, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}

	stmt, rows := fc()
	fields := []zap.Field{
		zap.String("operation", operation(stmt)),
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	switch lvl {
	case zapcore.ErrorLevel:
		fields = append(fields, zap.Error(err))
	case zapcore.WarnLevel:
		fields = append(fields, zap.Duration("threshold", l.slow))
	}

	if ce := l.forRequest(ctx).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

// classify picks the level and message for a finished statement and whether
// the GORM level lets it through
func (l *GormLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	failed := err != nil && !(l.quietNotFound && errors.Is(err, gormlogger.ErrRecordNotFound))
	switch {
	case failed:
		return zapcore.ErrorLevel, "SQL Error", l.level >= gormlogger.Error
	case l.slow > 0 && elapsed > l.slow:
		return zapcore.WarnLevel, "Slow SQL", l.level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, "SQL Query", l.level >= gormlogger.Info
	}
}

func (l *GormLogger) printf(ctx context.Context, atLeast gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < atLeast {
		return
	}
	if ce := l.forRequest(ctx).Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write()
	}
}

func (l *GormLogger) forRequest(ctx context.Context) *zap.Logger {
	if id := GetRequestID(ctx); id != "" {
		return l.base.With(zap.String("request_id", id))
	}
	return l.base
}

// operation returns the leading SQL keyword, e.g. SELECT
func operation(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel maps an application log level to a GORM level; unknown
// levels map to warn
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if lv, ok := gormLevels[strings.ToLower(level)]; ok {
		return lv
	}
	return gormlogger.Warn
}
