package logger

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// SetDefault 替换全局默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 返回全局默认 logger，未设置时懒加载控制台 logger
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		bl, err := New(DefaultConfig())
		if err != nil {
			defaultLogger = NewNoop()
		} else {
			defaultLogger = bl
		}
	}
	return defaultLogger
}
