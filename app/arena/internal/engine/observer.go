package engine

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/graph"
)

// Outcome 一次效用选择的结果
type Outcome string

const (
	OutcomeNoCandidates   Outcome = "no_candidates"
	OutcomeThrottled      Outcome = "throttled"
	OutcomeSameAction     Outcome = "same_action"
	OutcomeBelowMinSwitch Outcome = "below_min_switch"
	OutcomeSwitched       Outcome = "switched"
)

// Reporter 决策过程的统计出口
type Reporter interface {
	SelectorOutcome(selectorID string, outcome Outcome)
	ExitRefused(kind graph.ActionKind)
	TickDuration(d time.Duration)
}

// NopReporter 丢弃所有统计
type NopReporter struct{}

func (NopReporter) SelectorOutcome(string, Outcome) {}
func (NopReporter) ExitRefused(graph.ActionKind)    {}
func (NopReporter) TickDuration(time.Duration)      {}

// ActionChange 当前动作变化事件
type ActionChange struct {
	LoopID string
	NodeID string
	From   graph.ActionKind
	To     graph.ActionKind
	At     time.Time
}

// Observer 当前动作变化的监听者
type Observer interface {
	OnActionChanged(c ActionChange)
}

// ObserverFunc 函数式 Observer
type ObserverFunc func(c ActionChange)

func (f ObserverFunc) OnActionChanged(c ActionChange) {
	f(c)
}
