package app

import (
	"github.com/google/wire"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Components Wire 收集的组件
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(ProvideApp)

// ProvideApp 创建应用并挂载组件
func ProvideApp(l logger.Logger, comps Components) *BaseApp {
	a := NewBaseApp(WithLogger(l))
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// CloserFunc 函数适配 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
