// pkg/config/watcher.go
package config

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
)

// Watcher 配置热更新监听器
// 文件变化后重新解析并校验，失败时保留旧配置
type Watcher[T any] struct {
	mgr       Manager
	validator *Validator
	current   atomic.Pointer[T]

	mu        sync.RWMutex
	callbacks []func(*T)
	onError   func(error)
	initial   func() *T

	fsw    *fsnotify.Watcher
	done   chan struct{}
	closed atomic.Bool
}

// WatcherOption 监听器选项
type WatcherOption[T any] func(*Watcher[T])

// WithErrorHandler 重载失败时的回调
func WithErrorHandler[T any](fn func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) { w.onError = fn }
}

// WithInitial 解析前的初始值，文件中未出现的字段保持该值
func WithInitial[T any](fn func() *T) WatcherOption[T] {
	return func(w *Watcher[T]) { w.initial = fn }
}

// WithValidator 替换默认校验器
func WithValidator[T any](v *Validator) WatcherOption[T] {
	return func(w *Watcher[T]) { w.validator = v }
}

// NewWatcher 加载 path 并开始监听
func NewWatcher[T any](path string, opts []WatcherOption[T], mgrOpts ...Option) (*Watcher[T], error) {
	w := &Watcher[T]{
		mgr:       NewManager(mgrOpts...),
		validator: NewValidator(),
		onError:   func(error) {},
		initial:   func() *T { return new(T) },
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.mgr.LoadFile(path); err != nil {
		return nil, err
	}
	cfg, err := w.decode()
	if err != nil {
		return nil, err
	}
	w.current.Store(cfg)

	// 监听所在目录，编辑器的原子替换写入也能被捕获
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: create file watcher")
	}
	if err := fsw.Add(filepath.Dir(w.mgr.Path())); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "config: watch %s", path)
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(filepath.Clean(w.mgr.Path()))
	return w, nil
}

func (w *Watcher[T]) loop(path string) {
	defer close(w.done)
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != path || !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			w.Reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(errors.Wrap(err, "config: file watcher"))
		}
	}
}

// Close 停止监听，之后的 Reload 不再生效
func (w *Watcher[T]) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := w.fsw.Close()
	<-w.done
	return errors.Wrap(err, "config: close file watcher")
}

// Get 当前配置
func (w *Watcher[T]) Get() *T {
	return w.current.Load()
}

// OnChange 注册变更回调
func (w *Watcher[T]) OnChange(fn func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Reload 重新读取文件；成功时替换配置并触发回调
func (w *Watcher[T]) Reload() bool {
	if w.closed.Load() {
		return false
	}
	if err := w.mgr.LoadFile(w.mgr.Path()); err != nil {
		w.onError(err)
		return false
	}
	cfg, err := w.decode()
	if err != nil {
		w.onError(err)
		return false
	}
	w.current.Store(cfg)

	w.mu.RLock()
	callbacks := slices.Clone(w.callbacks)
	w.mu.RUnlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return true
}

func (w *Watcher[T]) decode() (*T, error) {
	cfg := w.initial()
	if err := w.mgr.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := w.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
