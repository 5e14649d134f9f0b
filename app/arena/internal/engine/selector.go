package engine

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// SelectorState 每个决策循环私有的选择器状态，按选择器 id 记录当前动作的基准分
type SelectorState struct {
	scores map[string]float64
}

func NewSelectorState() *SelectorState {
	return &SelectorState{scores: make(map[string]float64)}
}

// Score 基准分，未记录时为 0
func (s *SelectorState) Score(selectorID string) float64 {
	return s.scores[selectorID]
}

func (s *SelectorState) set(selectorID string, score float64) {
	s.scores[selectorID] = score
}

// Selection 一次选择所需的输入
type Selection struct {
	Env     *Env
	Current *graph.ActionNode
	Elapsed time.Duration
	State   *SelectorState
}

// Selector 效用选择器：过滤、节流、评分、softmax 采样、切换门限
type Selector struct {
	index    *graph.Index
	table    Table
	scorer   *utility.Scorer
	rand     func() float64
	reporter Reporter
	logger   logger.Logger
}

func NewSelector(idx *graph.Index, table Table, scorer *utility.Scorer, rand func() float64, r Reporter, l logger.Logger) *Selector {
	return &Selector{
		index:    idx,
		table:    table,
		scorer:   scorer,
		rand:     rand,
		reporter: r,
		logger:   l.Named("selector"),
	}
}

type candidate struct {
	node     *graph.ActionNode
	behavior Behavior
}

func sameNode(a, b *graph.ActionNode) bool {
	return a != nil && b != nil && a.ID() == b.ID()
}

// Evaluate 返回应切换到的动作；nil 表示本帧不切换
func (s *Selector) Evaluate(node *graph.UtilitySelectorNode, in Selection) *graph.ActionNode {
	chosen, outcome := s.evaluate(node, in)
	s.reporter.SelectorOutcome(node.ID(), outcome)
	return chosen
}

func (s *Selector) evaluate(node *graph.UtilitySelectorNode, in Selection) (*graph.ActionNode, Outcome) {
	var candidates []candidate
	for _, an := range s.index.GetConnectedActionNodes(node) {
		b, _ := s.table.Lookup(an.Kind)
		if b.CanExecute == nil || b.CanExecute(in.Env) {
			candidates = append(candidates, candidate{node: an, behavior: b})
		}
	}
	if len(candidates) == 0 {
		s.logger.Debug("no executable candidates", "selector_id", node.ID())
		return nil, OutcomeNoCandidates
	}

	if in.Elapsed < node.DecisionInterval {
		if !node.EmergencyOverride {
			return nil, OutcomeThrottled
		}
		var emergency []candidate
		for _, c := range candidates {
			if c.behavior.Priority == PriorityEmergency {
				emergency = append(emergency, c)
			}
		}
		if len(emergency) == 0 {
			return nil, OutcomeThrottled
		}
		candidates = emergency
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		if c.behavior.Score == nil {
			s.logger.Warn("no scorer for action kind", "kind", c.node.Kind)
			continue
		}
		scores[i] = c.behavior.Score(s.scorer, in.Env.Snap)
	}
	// 当前动作不在候选中时（例如经条件边进入），上次的基准分已失效
	baseline := 0.0
	for i, c := range candidates {
		if sameNode(c.node, in.Current) {
			scores[i] += node.StickyBonus
			baseline = scores[i]
		}
	}
	in.State.set(node.ID(), baseline)

	probs := utility.Softmax(scores, node.Temperature)
	idx := utility.Sample(probs, s.rand())
	chosen := candidates[idx].node

	if sameNode(chosen, in.Current) {
		return nil, OutcomeSameAction
	}

	delta := max(0, scores[idx]-in.State.Score(node.ID()))
	if delta < node.MinSwitchScore {
		s.logger.Debug("score delta below min switch",
			"selector_id", node.ID(),
			"kind", chosen.Kind,
			"delta", delta,
			"min_switch", node.MinSwitchScore,
		)
		return nil, OutcomeBelowMinSwitch
	}

	in.State.set(node.ID(), scores[idx])
	return chosen, OutcomeSwitched
}
