package engine

import (
	"context"
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Machine 持有唯一的当前动作及其子任务
// 退出守卫拒绝时状态和副作用均不变
type Machine struct {
	table     Table
	reporter  Reporter
	logger    logger.Logger
	onChange  func(from, to *graph.ActionNode)
	current   *graph.ActionNode
	startedAt time.Time
	task      *Task
}

// NewMachine onChange 在当前动作变化后调用，可为 nil
func NewMachine(table Table, r Reporter, l logger.Logger, onChange func(from, to *graph.ActionNode)) *Machine {
	if onChange == nil {
		onChange = func(_, _ *graph.ActionNode) {}
	}
	return &Machine{
		table:    table,
		reporter: r,
		logger:   l.Named("machine"),
		onChange: onChange,
	}
}

// Current 当前动作
func (m *Machine) Current() *graph.ActionNode {
	return m.current
}

// StartedAt 当前动作开始时间
func (m *Machine) StartedAt() time.Time {
	return m.startedAt
}

// Elapsed 当前动作已持续时间
func (m *Machine) Elapsed(now time.Time) time.Duration {
	return now.Sub(m.startedAt)
}

// Task 当前子任务，可能为 nil
func (m *Machine) Task() *Task {
	return m.task
}

func (m *Machine) behavior() Behavior {
	if m.current == nil {
		return Behavior{}
	}
	b, ok := m.table.Lookup(m.current.Kind)
	if !ok {
		m.logger.Debug("no behavior registered", "kind", m.current.Kind)
	}
	return b
}

// Init 设置初始动作，不执行进入副作用
func (m *Machine) Init(node *graph.ActionNode, now time.Time) {
	m.cancelTask()
	prev := m.current
	m.current = node
	m.startedAt = now
	m.onChange(prev, node)
}

// TryEnter 取消残留子任务后切换当前动作并执行进入副作用
func (m *Machine) TryEnter(node *graph.ActionNode, e *Env) {
	if node == nil {
		m.logger.Error("refusing to enter nil action node")
		return
	}
	m.cancelTask()
	prev := m.current
	m.current = node
	m.startedAt = e.Snap.Now
	if b := m.behavior(); b.Enter != nil {
		b.Enter(e)
	}
	m.onChange(prev, node)
}

// CanExit 只检查退出守卫，不产生副作用
func (m *Machine) CanExit(e *Env) bool {
	if m.current == nil {
		return true
	}
	b := m.behavior()
	if b.CanExit == nil || b.CanExit(e, m.Elapsed(e.Snap.Now)) {
		return true
	}
	m.reporter.ExitRefused(m.current.Kind)
	return false
}

// TryExit 守卫通过时同步取消子任务并执行退出清理
func (m *Machine) TryExit(e *Env) bool {
	if !m.CanExit(e) {
		return false
	}
	m.cancelTask()
	if b := m.behavior(); b.Exit != nil {
		b.Exit(e)
	}
	return true
}

// Tick 执行当前动作的每帧副作用并推进子任务
func (m *Machine) Tick(ctx context.Context, e *Env) {
	b := m.behavior()
	if b.Tick != nil {
		b.Tick(e)
	}
	if b.Routine != nil && m.task == nil {
		m.task = newTask(ctx, string(m.current.Kind), b.Routine())
	}
	if m.task != nil {
		m.task.Step(e)
	}
}

// Close 取消子任务
func (m *Machine) Close() {
	m.cancelTask()
}

func (m *Machine) cancelTask() {
	if m.task == nil {
		return
	}
	m.task.Cancel()
	m.task = nil
}
