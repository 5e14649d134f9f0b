// pkg/logger/interface.go
package logger

import "context"

// Logger 日志接口，key/value 形式的结构化日志
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	DebugContext(ctx context.Context, msg string, keysAndValues ...interface{})
	InfoContext(ctx context.Context, msg string, keysAndValues ...interface{})
	WarnContext(ctx context.Context, msg string, keysAndValues ...interface{})
	ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{})

	// Named 派生具名 logger，名称以 "." 连接
	Named(name string) Logger
	// WithFields 派生带固定字段的 logger
	WithFields(keysAndValues ...interface{}) Logger

	Sync() error
}
