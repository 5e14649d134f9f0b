package utility

import (
	"slices"
	"sync"

	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/config"
	"github.com/lk2023060901/combatai/pkg/logger"
	"go.uber.org/atomic"
)

// WeightsSource 评分时读取当前权重
type WeightsSource interface {
	Weights() *Weights
}

// Store 写时复制的权重容器，读无锁
type Store struct {
	current     atomic.Pointer[Weights]
	rebalancing atomic.Bool
	logger      logger.Logger

	mu        sync.Mutex
	listeners []func(*Weights)
}

// NewStore w 为 nil 时使用默认权重
func NewStore(w *Weights, l logger.Logger) *Store {
	if w == nil {
		w = DefaultWeights()
	}
	s := &Store{logger: l.Named("weights")}
	s.current.Store(w.Clone())
	return s
}

// Weights 当前权重快照，调用方不得修改
func (s *Store) Weights() *Weights {
	return s.current.Load()
}

// OnChange 注册变更回调
func (s *Store) OnChange(fn func(*Weights)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Replace 整体替换
func (s *Store) Replace(w *Weights) {
	next := w.Clone()
	s.current.Store(next)
	s.notify(next)
}

// Set 修改单个权重并重新分配组内其余权重
func (s *Store) Set(kind graph.ActionKind, name string, value float64) error {
	return s.mutate(func(w *Weights) error { return w.Set(kind, name, value) })
}

// Rebalance 组内归一化
func (s *Store) Rebalance(kind graph.ActionKind) error {
	return s.mutate(func(w *Weights) error { return w.Rebalance(kind) })
}

// mutate 在副本上修改后替换；回调中再次修改会返回 ErrRebalancing
func (s *Store) mutate(fn func(*Weights) error) error {
	if !s.rebalancing.CompareAndSwap(false, true) {
		return ErrRebalancing
	}
	defer s.rebalancing.Store(false)

	next := s.current.Load().Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.current.Store(next)
	s.notify(next)
	return nil
}

func (s *Store) notify(w *Weights) {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(w)
	}
}

// Watch 从文件加载权重并在文件变化时热更新；文件中缺省的字段取默认值
func (s *Store) Watch(path string) (*config.Watcher[Weights], error) {
	w, err := config.NewWatcher[Weights](path, []config.WatcherOption[Weights]{
		config.WithInitial(DefaultWeights),
		config.WithErrorHandler[Weights](func(err error) {
			s.logger.Error("weights reload failed, keeping previous", "path", path, "error", err)
		}),
	})
	if err != nil {
		return nil, err
	}
	s.Replace(w.Get())
	w.OnChange(func(next *Weights) {
		s.logger.Info("weights reloaded", "path", path)
		s.Replace(next)
	})
	return w, nil
}
