package graph

// ConditionKind 条件种类
type ConditionKind string

const (
	CheckDistance                ConditionKind = "CheckDistance"
	CheckHealth                  ConditionKind = "CheckHealth"
	CheckStamina                 ConditionKind = "CheckStamina"
	TargetInAttackRange          ConditionKind = "TargetInAttackRange"
	TargetRangeCoverage          ConditionKind = "TargetRangeCoverage"
	CombatTargetAttacking        ConditionKind = "CombatTargetAttacking"
	SelfInAttackRange            ConditionKind = "SelfInAttackRange"
	HeavySwingChargeProgress     ConditionKind = "HeavySwingChargeProgress"
	HeavySwingCurrentStaminaCost ConditionKind = "HeavySwingCurrentStaminaCost"
)

// IsBoolean 布尔型条件的取值只有 0 和 1，忽略比较运算符
func (k ConditionKind) IsBoolean() bool {
	switch k {
	case TargetInAttackRange, SelfInAttackRange, CombatTargetAttacking:
		return true
	default:
		return false
	}
}

// Operator 比较运算符
type Operator string

const (
	Less         Operator = "<"
	LessEqual    Operator = "<="
	GreaterEqual Operator = ">="
	Greater      Operator = ">"
	Equal        Operator = "="
)

func (o Operator) Valid() bool {
	switch o {
	case Less, LessEqual, GreaterEqual, Greater, Equal:
		return true
	default:
		return false
	}
}

// Connector 相邻条件之间的逻辑连接
type Connector string

const (
	And Connector = "And"
	Or  Connector = "Or"
)

// Valid 连接符区分大小写，只接受 And 与 Or
func (c Connector) Valid() bool {
	return c == And || c == Or
}

// ConditionEntry 单条比较
type ConditionEntry struct {
	Kind     ConditionKind `yaml:"kind" json:"kind"`
	Operator Operator      `yaml:"op" json:"op"`
	Value    float64       `yaml:"value" json:"value"`
}

// ConditionNode 两个动作之间的布尔门
// 约束：len(Connectors) == len(Entries)-1
type ConditionNode struct {
	BaseNode
	Entries    []ConditionEntry
	Connectors []Connector
	// Priority 越小越先求值
	Priority int
}

func (n *ConditionNode) Type() NodeType { return TypeCondition }

// ConnectedNode 条件成立后进入的节点
func (n *ConditionNode) ConnectedNode() (string, bool) {
	if len(n.NextNodeIDs) != 1 {
		return "", false
	}
	return n.NextNodeIDs[0], true
}

// AddEntry 追加条目；非首条时以 c 与前一条连接
func (n *ConditionNode) AddEntry(e ConditionEntry, c Connector) {
	n.Entries = append(n.Entries, e)
	if len(n.Entries) > 1 {
		n.Connectors = append(n.Connectors, c)
	}
	n.Resync()
}

// RemoveEntry 删除第 i 条及其前置连接符
func (n *ConditionNode) RemoveEntry(i int) {
	if i < 0 || i >= len(n.Entries) {
		return
	}
	n.Entries = append(n.Entries[:i], n.Entries[i+1:]...)
	if len(n.Connectors) > 0 {
		ci := i - 1
		if ci < 0 {
			ci = 0
		}
		n.Connectors = append(n.Connectors[:ci], n.Connectors[ci+1:]...)
	}
	n.Resync()
}

// Resync 修正连接符数量：缺少补 And，多余截断
func (n *ConditionNode) Resync() {
	want := len(n.Entries) - 1
	if want < 0 {
		want = 0
	}
	for len(n.Connectors) < want {
		n.Connectors = append(n.Connectors, And)
	}
	n.Connectors = n.Connectors[:want]
}

// Synced 连接符数量是否满足约束
func (n *ConditionNode) Synced() bool {
	if len(n.Entries) == 0 {
		return len(n.Connectors) == 0
	}
	return len(n.Connectors) == len(n.Entries)-1
}
