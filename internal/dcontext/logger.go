// Package dcontext threads a structured logger and a handful of
// request-scoped values through context.Context, the way the registry
// does it: handlers pull a Logger back out with GetLogger rather than
// passing one down explicitly.
package dcontext

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   *logrus.Entry = logrus.StandardLogger().WithField("go.version", runtime.Version())
	defaultLoggerMu sync.RWMutex
)

// Logger is the leveled-logging interface handlers and components log
// through. It is satisfied by *logrus.Entry.
type Logger interface {
	Print(args ...any)
	Printf(format string, args ...any)
	Println(args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fatalln(args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Info(args ...any)
	Infof(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	WithError(err error) *logrus.Entry
	WithField(key string, value any) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
}

// SetDefaultLogger installs l as the logger returned by GetLogger when no
// logger has been attached to the context.
func SetDefaultLogger(l *logrus.Entry) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

type loggerKey struct{}

// WithLogger returns a context with l attached, retrievable with GetLogger.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger returns the logger attached to ctx, optionally decorated with
// the non-nil ctx.Value of each named key, mirroring the
// registry's convention of tagging log lines with request-scoped fields
// (e.g. "http.request.id").
func GetLogger(ctx context.Context, keys ...any) Logger {
	logger := getDefaultLogger(ctx)

	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			logger = logger.WithField(fmt.Sprint(key), v)
		}
	}

	return logger
}

func getDefaultLogger(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}

	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// GetStringValue returns the string stored at key in ctx, or "" if absent
// or not a string.
func GetStringValue(ctx context.Context, key any) string {
	v, _ := ctx.Value(key).(string)
	return v
}
