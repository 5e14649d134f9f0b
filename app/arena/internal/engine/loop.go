package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/condition"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/logger"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// ErrInvalidRoot 图没有可用的根动作，循环无法启动
var ErrInvalidRoot = errors.New("engine: invalid root action")

// TargetFinder 为角色查找当前战斗目标，没有目标时返回 nil
type TargetFinder interface {
	FindTarget(self combat.Character) combat.Target
}

// TargetFinderFunc 函数式 TargetFinder
type TargetFinderFunc func(self combat.Character) combat.Target

func (f TargetFinderFunc) FindTarget(self combat.Character) combat.Target {
	return f(self)
}

// LoopOption 决策循环选项
type LoopOption func(*Loop)

// WithID 指定循环 id，默认为角色 id
func WithID(id string) LoopOption {
	return func(l *Loop) { l.id = id }
}

// WithParams 替换默认参数
func WithParams(p *Params) LoopOption {
	return func(l *Loop) { l.params = p }
}

// WithTable 替换动作分派表
func WithTable(t Table) LoopOption {
	return func(l *Loop) { l.table = t }
}

// WithEvaluator 替换条件求值器
func WithEvaluator(e *condition.Evaluator) LoopOption {
	return func(l *Loop) { l.evaluator = e }
}

// WithClock 注入时钟
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) { l.clock = now }
}

// WithRand 注入 [0,1) 随机数源
func WithRand(r func() float64) LoopOption {
	return func(l *Loop) { l.rand = r }
}

// WithReporter 决策统计
func WithReporter(r Reporter) LoopOption {
	return func(l *Loop) { l.reporter = r }
}

// WithObserver 追加动作变化监听者
func WithObserver(o Observer) LoopOption {
	return func(l *Loop) { l.observers = append(l.observers, o) }
}

// Loop 单个 NPC 的决策循环
// Tick 只能在一个 goroutine 中调用
type Loop struct {
	id        string
	self      combat.Character
	finder    TargetFinder
	index     *graph.Index
	params    *Params
	table     Table
	evaluator *condition.Evaluator
	scorer    *utility.Scorer
	selector  *Selector
	machine   *Machine
	watcher   *combat.AttackWatcher
	state     *SelectorState
	reporter  Reporter
	clock     func() time.Time
	rand      func() float64
	logger    logger.Logger
	faults    rate.Sometimes

	radius float64

	// 当前动作的后继，切换时整体刷新
	conditions []*graph.ConditionNode
	actions    []*graph.ActionNode
	utilities  []*graph.UtilitySelectorNode

	mu        sync.RWMutex
	observers []Observer
	changes   chan ActionChange
	closed    atomic.Bool
}

// NewLoop 校验根节点并以根动作初始化；根无效时返回 ErrInvalidRoot
func NewLoop(self combat.Character, finder TargetFinder, idx *graph.Index, weights utility.WeightsSource, l logger.Logger, opts ...LoopOption) (*Loop, error) {
	root, err := idx.Root()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "resolve root"), ErrInvalidRoot)
	}

	loop := &Loop{
		id:       self.ID(),
		self:     self,
		finder:   finder,
		index:    idx,
		params:   DefaultParams(),
		table:    DefaultTable(),
		watcher:  combat.NewAttackWatcher(),
		state:    NewSelectorState(),
		reporter: NopReporter{},
		clock:    time.Now,
		rand:     rand.Float64,
		faults:   rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(loop)
	}

	loop.logger = l.Named("engine.loop").WithFields("loop_id", loop.id)
	if loop.evaluator == nil {
		loop.evaluator = condition.NewEvaluator(l)
	}
	loop.scorer = utility.NewScorer(weights, l)
	loop.selector = NewSelector(idx, loop.table, loop.scorer, loop.rand, loop.reporter, loop.logger)
	loop.machine = NewMachine(loop.table, loop.reporter, loop.logger, loop.onChange)
	if loop.params.ChangeBuffer > 0 {
		loop.changes = make(chan ActionChange, loop.params.ChangeBuffer)
	}
	loop.radius = loop.params.DefensiveRadius(self.HealthPercent())

	loop.machine.Init(root, loop.clock())
	return loop, nil
}

// ID 循环 id
func (l *Loop) ID() string {
	return l.id
}

// Current 当前动作
func (l *Loop) Current() *graph.ActionNode {
	return l.machine.Current()
}

// Machine 当前动作状态机
func (l *Loop) Machine() *Machine {
	return l.machine
}

// DefensiveRadius 当前防御半径
func (l *Loop) DefensiveRadius() float64 {
	return l.radius
}

// AddObserver 追加动作变化监听者
func (l *Loop) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Changes 动作变化通道，缓冲满时丢弃；ChangeBuffer 为 0 时返回 nil
func (l *Loop) Changes() <-chan ActionChange {
	return l.changes
}

func (l *Loop) onChange(from, to *graph.ActionNode) {
	l.conditions = l.index.GetConnectedConditionNodes(to)
	l.actions = l.index.GetConnectedActionNodes(to)
	l.utilities = l.index.GetConnectedUtilityNodes(to)

	c := ActionChange{
		LoopID: l.id,
		NodeID: to.ID(),
		To:     to.Kind,
		At:     l.machine.StartedAt(),
	}
	if from != nil {
		c.From = from.Kind
	}
	l.logger.Debug("action changed", "from", c.From, "to", c.To, "node_id", c.NodeID)

	l.mu.RLock()
	observers := l.observers
	l.mu.RUnlock()
	for _, o := range observers {
		o.OnActionChanged(c)
	}

	if l.changes == nil || l.closed.Load() {
		return
	}
	select {
	case l.changes <- c:
	default:
		l.logger.Debug("change channel full, dropping", "node_id", c.NodeID)
	}
}

func (l *Loop) env(target combat.Target, now time.Time) *Env {
	snap := combat.Capture(l.self, target, l.watcher.Seen(), l.radius, now)
	return &Env{
		Self:   l.self,
		Target: target,
		Snap:   snap,
		Params: l.params,
		Rand:   l.rand,
		Logger: l.logger,
		radius: &l.radius,
	}
}

// Start 按 TickInterval 驱动 Tick，直到 ctx 结束
func (l *Loop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.params.TickInterval)
	defer ticker.Stop()
	defer l.Close()

	l.logger.Info("decision loop started", "root", l.Current().ID())
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("decision loop stopped")
			return nil

		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick 执行一帧：当前动作副作用，然后依次尝试条件、直连动作、效用选择器
// 每帧最多切换一次，返回是否发生切换
func (l *Loop) Tick(ctx context.Context) bool {
	if l.closed.Load() {
		return false
	}
	started := time.Now()
	defer func() { l.reporter.TickDuration(time.Since(started)) }()

	target := l.finder.FindTarget(l.self)
	l.watcher.Watch(target)
	if target == nil {
		return false
	}

	e := l.env(target, l.clock())
	if e.Snap.State != combat.StateDeath {
		l.machine.Tick(ctx, e)
	}

	if l.tryConditions(e, l.conditions) {
		return true
	}
	if l.tryActions(e) {
		return true
	}
	return l.tryUtilities(e)
}

func (l *Loop) selection(e *Env) Selection {
	return Selection{
		Env:     e,
		Current: l.machine.Current(),
		Elapsed: l.machine.Elapsed(e.Snap.Now),
		State:   l.state,
	}
}

func (l *Loop) switchTo(node *graph.ActionNode, e *Env) bool {
	if !l.machine.TryExit(e) {
		return false
	}
	l.machine.TryEnter(node, e)
	return true
}

// tryConditions 按优先级检查条件节点，第一个满足的决定去向
func (l *Loop) tryConditions(e *Env, conds []*graph.ConditionNode) bool {
	for _, cn := range conds {
		if !l.evaluator.Evaluate(cn, e.Snap) {
			continue
		}
		nextID, ok := cn.ConnectedNode()
		if !ok {
			l.faults.Do(func() {
				l.logger.Error("condition node must have exactly one successor", "node_id", cn.ID())
			})
			return false
		}
		next, ok := l.index.ResolveByID(nextID)
		if !ok {
			l.logger.Warn("condition successor not found", "node_id", cn.ID(), "next_id", nextID)
			return false
		}

		switch n := next.(type) {
		case *graph.ActionNode:
			return l.switchTo(n, e)

		case *graph.UtilitySelectorNode:
			if !l.machine.CanExit(e) {
				return false
			}
			if chosen := l.selector.Evaluate(n, l.selection(e)); chosen != nil {
				return l.switchTo(chosen, e)
			}

		default:
			l.faults.Do(func() {
				l.logger.Error("condition successor is neither action nor selector",
					"node_id", cn.ID(),
					"next_id", nextID,
					"type", next.Type(),
				)
			})
			return false
		}
	}
	return false
}

// tryActions 直连动作边，多于一条时只取第一条
func (l *Loop) tryActions(e *Env) bool {
	if len(l.actions) == 0 {
		return false
	}
	if len(l.actions) > 1 {
		l.faults.Do(func() {
			l.logger.Warn("multiple direct action edges, taking the first",
				"node_id", l.Current().ID(),
				"count", len(l.actions),
			)
		})
	}
	return l.switchTo(l.actions[0], e)
}

// tryUtilities 依次评估效用选择器；选择器未给出结果时检查挂在其后的条件节点
func (l *Loop) tryUtilities(e *Env) bool {
	for _, u := range l.utilities {
		if l.machine.CanExit(e) {
			if chosen := l.selector.Evaluate(u, l.selection(e)); chosen != nil {
				return l.switchTo(chosen, e)
			}
		}
		if conds := l.index.GetConnectedConditionNodes(u); len(conds) > 0 && l.tryConditions(e, conds) {
			return true
		}
	}
	return false
}

// Close 取消子任务、解除目标订阅并关闭变化通道，可重复调用
// 不能与 Tick 并发调用；Start 返回前会自动调用
func (l *Loop) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.machine.Close()
	l.watcher.Close()
	if l.changes != nil {
		close(l.changes)
	}
}
