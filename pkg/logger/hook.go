package logger

import (
	"sync"

	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Hook 日志写入钩子，返回 false 时丢弃该条日志
type Hook interface {
	OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool
}

// HookFunc 函数式 Hook
type HookFunc func(entry zapcore.Entry, fields []zapcore.Field) bool

func (f HookFunc) OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool {
	return f(entry, fields)
}

// HookedCore 在写入前执行钩子的 Core
type HookedCore struct {
	zapcore.Core
	hooks []Hook
}

// NewHookedCore 包装 core
func NewHookedCore(core zapcore.Core, hooks ...Hook) zapcore.Core {
	return &HookedCore{Core: core, hooks: hooks}
}

func (h *HookedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}
	return ce
}

func (h *HookedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range h.hooks {
		if !hook.OnWrite(entry, fields) {
			return nil
		}
	}
	return h.Core.Write(entry, fields)
}

func (h *HookedCore) With(fields []zapcore.Field) zapcore.Core {
	return &HookedCore{Core: h.Core.With(fields), hooks: h.hooks}
}

// RepeatLimitHook 按 logger 名称 + 消息限流
// 决策循环每帧都可能命中同一个配置错误，限流后同一条消息每秒最多输出 perSecond 条
func RepeatLimitHook(perSecond float64, burst int) Hook {
	if burst < 1 {
		burst = 1
	}
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return HookFunc(func(entry zapcore.Entry, _ []zapcore.Field) bool {
		if entry.Level < zapcore.WarnLevel {
			return true
		}
		key := entry.LoggerName + "|" + entry.Message

		mu.Lock()
		lim, ok := limiters[key]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(perSecond), burst)
			limiters[key] = lim
		}
		mu.Unlock()

		return lim.AllowN(entry.Time, 1)
	})
}
