package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var (
	globalLock   sync.RWMutex
	globalLogger Logger = NewZap(zap.NewNop())
)

// SetGlobalLogger replaces the logger used by the package level functions.
// Passing nil is ignored.
func SetGlobalLogger(l Logger) {
	if l == nil {
		return
	}

	globalLock.Lock()
	defer globalLock.Unlock()
	globalLogger = l
}

func global() Logger {
	globalLock.RLock()
	defer globalLock.RUnlock()
	return globalLogger
}

func Debug(ctx context.Context, msg string, fields ...KeyValue) {
	global().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...KeyValue) {
	global().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...KeyValue) {
	global().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...KeyValue) {
	global().Error(ctx, msg, fields...)
}
