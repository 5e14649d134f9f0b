package combat

import (
	"sync"

	"go.uber.org/atomic"
)

// AttackWatcher 通过目标的攻击开始/结束事件维护"看到来袭攻击"标记
type AttackWatcher struct {
	mu     sync.Mutex
	target Target
	cancel func()
	seen   atomic.Bool
}

func NewAttackWatcher() *AttackWatcher {
	return &AttackWatcher{}
}

// Watch 切换观察目标；target 为 nil 时只解除旧订阅
func (w *AttackWatcher) Watch(target Target) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.target == target {
		return
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.seen.Store(false)
	w.target = target
	if target == nil {
		return
	}
	w.cancel = target.SubscribeAttack(
		func() { w.seen.Store(true) },
		func() { w.seen.Store(false) },
	)
}

// Seen 当前是否有来袭攻击
func (w *AttackWatcher) Seen() bool {
	return w.seen.Load()
}

// Close 解除订阅
func (w *AttackWatcher) Close() {
	w.Watch(nil)
}
