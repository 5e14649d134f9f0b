package condition

import (
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Evaluator 条件节点求值
type Evaluator struct {
	resolvers map[graph.ConditionKind]Resolver
	logger    logger.Logger
}

// Option Evaluator 选项
type Option func(*Evaluator)

// WithResolver 注册或覆盖某个条件种类的取值
func WithResolver(kind graph.ConditionKind, r Resolver) Option {
	return func(e *Evaluator) { e.resolvers[kind] = r }
}

func NewEvaluator(l logger.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		resolvers: DefaultResolvers(),
		logger:    l.Named("condition"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate 空条目为真；条目为 nil、连接符数量不匹配或连接符无效时记录错误并返回 false
func (e *Evaluator) Evaluate(n *graph.ConditionNode, s combat.Snapshot) bool {
	if n == nil || n.Entries == nil {
		e.logger.Error("condition node has no entry list", "node_id", nodeID(n))
		return false
	}
	if len(n.Entries) == 0 {
		return true
	}
	if !n.Synced() {
		e.logger.Error("connector count mismatch",
			"node_id", n.ID(),
			"entries", len(n.Entries),
			"connectors", len(n.Connectors),
		)
		return false
	}
	for i, c := range n.Connectors {
		if !c.Valid() {
			e.logger.Error("invalid connector",
				"node_id", n.ID(),
				"index", i,
				"connector", string(c),
			)
			return false
		}
	}

	results := make([]bool, len(n.Entries))
	for i, entry := range n.Entries {
		results[i] = e.CheckEntry(entry, s)
	}
	return Combine(results, n.Connectors)
}

// CheckEntry 单条比较；布尔型条件按 0/1 精确相等
func (e *Evaluator) CheckEntry(entry graph.ConditionEntry, s combat.Snapshot) bool {
	resolve, ok := e.resolvers[entry.Kind]
	if !ok {
		e.logger.Error("unknown condition kind", "kind", entry.Kind)
		return false
	}
	actual := resolve(s, e.logger)

	if entry.Kind.IsBoolean() {
		if !isBit(actual) || !isBit(entry.Value) {
			e.logger.Error("boolean condition outside {0,1}",
				"kind", entry.Kind,
				"actual", actual,
				"expected", entry.Value,
			)
		}
		return actual == entry.Value
	}

	ok, err := Compare(entry.Operator, actual, entry.Value)
	if err != nil {
		e.logger.Error("invalid condition entry", "kind", entry.Kind, "error", err)
		return false
	}
	return ok
}

func isBit(v float64) bool { return v == 0 || v == 1 }

func nodeID(n *graph.ConditionNode) string {
	if n == nil {
		return ""
	}
	return n.ID()
}
