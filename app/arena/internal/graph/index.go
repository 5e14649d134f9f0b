package graph

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Index id 到节点的解析
type Index struct {
	container *Container
	byID      map[string]Node
	logger    logger.Logger
}

// NewIndex 建立索引；重复 id 以先出现者为准
func NewIndex(c *Container, l logger.Logger) *Index {
	idx := &Index{
		container: c,
		byID:      make(map[string]Node),
		logger:    l.Named("graph"),
	}
	c.Walk(func(group string, n Node) {
		if n == nil {
			return
		}
		if _, ok := idx.byID[n.ID()]; ok {
			idx.logger.Warn("duplicate node id, keeping first", "node_id", n.ID(), "group", group)
			return
		}
		idx.byID[n.ID()] = n
	})
	return idx
}

// Container 底层图资源
func (idx *Index) Container() *Container {
	return idx.container
}

// ResolveByID 未分组优先，其次按组名顺序
func (idx *Index) ResolveByID(id string) (Node, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// GetConnectedNodes 解析 ids；找不到的 id 记录告警后跳过
func (idx *Index) GetConnectedNodes(ids []string) []Node {
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, ok := idx.byID[id]
		if !ok {
			idx.logger.Warn("connected node not found", "node_id", id)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// GetConnectedConditionNodes 按 Priority 升序
func (idx *Index) GetConnectedConditionNodes(n Node) []*ConditionNode {
	var out []*ConditionNode
	for _, c := range idx.GetConnectedNodes(n.Next()) {
		if cn, ok := c.(*ConditionNode); ok {
			out = append(out, cn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func (idx *Index) GetConnectedActionNodes(n Node) []*ActionNode {
	var out []*ActionNode
	for _, c := range idx.GetConnectedNodes(n.Next()) {
		if an, ok := c.(*ActionNode); ok {
			out = append(out, an)
		}
	}
	return out
}

func (idx *Index) GetConnectedUtilityNodes(n Node) []*UtilitySelectorNode {
	var out []*UtilitySelectorNode
	for _, c := range idx.GetConnectedNodes(n.Next()) {
		if un, ok := c.(*UtilitySelectorNode); ok {
			out = append(out, un)
		}
	}
	return out
}

// Root 在未分组节点中查找唯一的根，根必须是动作节点
func (idx *Index) Root() (*ActionNode, error) {
	var roots []Node
	for _, n := range idx.container.UngroupedNodes {
		if n != nil && n.IsRoot() {
			roots = append(roots, n)
		}
	}
	switch len(roots) {
	case 0:
		return nil, ErrRootNotFound
	case 1:
	default:
		ids := make([]string, len(roots))
		for i, r := range roots {
			ids[i] = r.ID()
		}
		return nil, errors.Wrapf(ErrAmbiguousRoot, "roots %v", ids)
	}

	root, ok := roots[0].(*ActionNode)
	if !ok {
		return nil, errors.Wrapf(ErrRootNotAction, "node %s is %s", roots[0].ID(), roots[0].Type())
	}
	return root, nil
}
