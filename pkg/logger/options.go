package logger

import "io"

// Option logger 选项
type Option func(*BaseLogger)

// WithName 设置根名称
func WithName(name string) Option {
	return func(l *BaseLogger) { l.name = name }
}

// WithHooks 添加写入钩子
func WithHooks(hooks ...Hook) Option {
	return func(l *BaseLogger) { l.hooks = append(l.hooks, hooks...) }
}

// WithContextExtractor 替换 context 字段提取器
func WithContextExtractor(fn ContextFieldExtractor) Option {
	return func(l *BaseLogger) {
		if fn != nil {
			l.extractor = fn
		}
	}
}

// WithConsoleWriter 替换控制台输出，主要用于测试
func WithConsoleWriter(w io.Writer) Option {
	return func(l *BaseLogger) {
		if w != nil {
			l.console = w
		}
	}
}
