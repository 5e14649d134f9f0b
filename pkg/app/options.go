package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Options 应用选项
type Options struct {
	ID          string
	Name        string
	StopTimeout time.Duration
	Logger      logger.Logger
}

// Option 选项函数
type Option func(*Options)

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		StopTimeout: 10 * time.Second,
		Logger:      logger.Default(),
	}
}

func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStopTimeout 优雅停止超时
func WithStopTimeout(d time.Duration) Option {
	return func(o *Options) { o.StopTimeout = d }
}
