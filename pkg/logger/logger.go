// pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*BaseLogger)(nil)

// BaseLogger 基于 zap 的 Logger 实现
type BaseLogger struct {
	zl        *zap.Logger
	cfg       *Config
	name      string
	hooks     []Hook
	extractor ContextFieldExtractor
	console   io.Writer
}

// New 创建 logger，cfg 为 nil 时使用默认配置
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "logger: merge config")
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	l := &BaseLogger{
		cfg:       merged,
		extractor: DefaultContextExtractor,
		console:   os.Stdout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if merged.RepeatLimit > 0 {
		l.hooks = append(l.hooks, RepeatLimitHook(merged.RepeatLimit, merged.RepeatBurst))
	}

	zl, err := l.build()
	if err != nil {
		return nil, err
	}
	l.zl = zl
	return l, nil
}

func (l *BaseLogger) build() (*zap.Logger, error) {
	encCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if l.cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(l.cfg.TimeFormat)
	}
	if l.cfg.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var enc zapcore.Encoder
	if l.cfg.Format == JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var sinks []zapcore.WriteSyncer
	if l.cfg.EnableConsole {
		sinks = append(sinks, zapcore.AddSync(l.console))
	}
	if l.cfg.EnableFile {
		w, err := NewRotationWriter(&l.cfg.Rotation, l.cfg.OutputPath)
		if err != nil {
			return nil, errors.Wrap(err, "logger: create rotation writer")
		}
		sinks = append(sinks, zapcore.AddSync(w))
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), toZapLevel(l.cfg.Level))
	if len(l.hooks) > 0 {
		core = NewHookedCore(core, l.hooks...)
	}
	if l.cfg.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, l.cfg.SamplingInitial, l.cfg.SamplingThereafter)
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if l.cfg.EnableStacktrace {
		zopts = append(zopts, zap.AddStacktrace(toZapLevel(l.cfg.StacktraceLevel)))
	}
	if l.cfg.Development {
		zopts = append(zopts, zap.Development())
	}

	zl := zap.New(core, zopts...)
	if len(l.cfg.GlobalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.cfg.GlobalFields))
		for k, v := range l.cfg.GlobalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	return zl, nil
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *BaseLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.zl.Debug(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Info(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.zl.Warn(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Error(msg string, keysAndValues ...interface{}) {
	l.zl.Error(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Debug(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Info(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Warn(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.zl.Error(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) contextFields(ctx context.Context, kv []interface{}) []zap.Field {
	return append(l.extractor(ctx), toZapFields(kv)...)
}

// Named 派生具名 logger
func (l *BaseLogger) Named(name string) Logger {
	child := *l
	child.zl = l.zl.Named(name)
	child.name = name
	return &child
}

// WithFields 派生带字段的 logger
func (l *BaseLogger) WithFields(keysAndValues ...interface{}) Logger {
	fields := toZapFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.zl = l.zl.With(fields...)
	return &child
}

// Zap 返回底层 zap.Logger
func (l *BaseLogger) Zap() *zap.Logger {
	return l.zl
}

func (l *BaseLogger) Sync() error {
	return l.zl.Sync()
}

// toZapFields 将 key/value 对转换为 zap 字段，奇数个参数时丢弃最后一个
func toZapFields(kv []interface{}) []zap.Field {
	if len(kv) == 0 {
		return nil
	}
	if _, ok := kv[0].(zap.Field); ok {
		fields := make([]zap.Field, 0, len(kv))
		for _, v := range kv {
			if f, ok := v.(zap.Field); ok {
				fields = append(fields, f)
			}
		}
		return fields
	}

	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, ok := kv[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
