package app

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/logger"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

var ErrAppAlreadyRunning = errors.New("app: already running")

// Server 长期运行的组件；Serve 阻塞到 ctx 结束
type Server interface {
	Name() string
	Serve(ctx context.Context) error
}

// Closer 资源清理
type Closer interface {
	Close() error
}

// BaseApp 管理 Server 与 Closer 的生命周期
type BaseApp struct {
	opts   Options
	logger logger.Logger

	mu      sync.Mutex
	servers []Server
	closers []Closer
	started atomic.Bool
}

// NewBaseApp 创建应用
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BaseApp{opts: o, logger: o.Logger.Named(o.Name)}
}

// Logger 应用日志
func (a *BaseApp) Logger() logger.Logger {
	return a.logger
}

// AppendServer 追加 Server
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 追加 Closer，停止时逆序关闭
func (a *BaseApp) AppendCloser(c ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c...)
}

// Run 启动全部 Server 并阻塞到收到信号、ctx 结束或任一 Server 出错
func (a *BaseApp) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := GetInfo()
	a.logger.Info("application starting",
		"version", info.Version,
		"commit", info.GitCommit,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	a.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			a.logger.Info("server started", "server", srv.Name())
			if err := srv.Serve(gctx); err != nil {
				return errors.Wrapf(err, "server %s", srv.Name())
			}
			return nil
		})
	}

	err := a.wait(gctx, g)
	a.close()
	return err
}

func (a *BaseApp) wait(ctx context.Context, g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		a.logger.Info("application shutting down")
		select {
		case err = <-done:
		case <-time.After(a.opts.StopTimeout):
			a.logger.Warn("shutdown timeout, forcing exit", "timeout", a.opts.StopTimeout)
			return nil
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("application stopped with error", "error", err)
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

func (a *BaseApp) close() {
	a.mu.Lock()
	closers := append([]Closer(nil), a.closers...)
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}
	_ = a.logger.Sync()
}
