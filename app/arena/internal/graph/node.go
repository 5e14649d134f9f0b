package graph

import "time"

// NodeType 节点类型
type NodeType string

const (
	TypeAction    NodeType = "action"
	TypeCondition NodeType = "condition"
	TypeUtility   NodeType = "utility"
)

// ActionKind 动作种类，可扩展
type ActionKind string

const (
	MoveToStanceRadius ActionKind = "MoveToStanceRadius"
	MoveToAttackRange  ActionKind = "MoveToAttackRange"
	CombatStance       ActionKind = "CombatStance"
	HoldBlock          ActionKind = "HoldBlock"
	LightAttack        ActionKind = "LightAttack"
	StartHeavyAttack   ActionKind = "StartHeavyAttack"
	ReleaseHeavyAttack ActionKind = "ReleaseHeavyAttack"
	DodgeAttack        ActionKind = "DodgeAttack"
	Retreat            ActionKind = "Retreat"
)

// ActionKinds 全部内置动作
var ActionKinds = []ActionKind{
	MoveToStanceRadius, MoveToAttackRange, CombatStance,
	HoldBlock, LightAttack, StartHeavyAttack,
	ReleaseHeavyAttack, DodgeAttack, Retreat,
}

// Node 图节点，加载完成后只读
type Node interface {
	ID() string
	Next() []string
	IsRoot() bool
	Type() NodeType
}

// BaseNode 公共字段
type BaseNode struct {
	NodeID      string
	NextNodeIDs []string
	IsRootNode  bool
}

func (n *BaseNode) ID() string { return n.NodeID }

func (n *BaseNode) Next() []string { return n.NextNodeIDs }

func (n *BaseNode) IsRoot() bool { return n.IsRootNode }

// ActionNode 唯一可以成为"当前动作"的节点
type ActionNode struct {
	BaseNode
	Kind ActionKind
}

func (n *ActionNode) Type() NodeType { return TypeAction }

// UtilitySelectorNode 按效用分数在候选动作间进行概率选择
type UtilitySelectorNode struct {
	BaseNode
	// DecisionInterval 当前动作至少运行多久才重新决策
	DecisionInterval  time.Duration
	EmergencyOverride bool
	StickyBonus       float64
	// Temperature softmax 温度，越低越贪心
	Temperature    float64
	MinSwitchScore float64
}

func (n *UtilitySelectorNode) Type() NodeType { return TypeUtility }
