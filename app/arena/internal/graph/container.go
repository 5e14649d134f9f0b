package graph

import "sort"

// Container 图资源：未分组节点 + 按组名归类的节点
// 分组只是编辑期的组织方式，运行时只关心 id 是否可达
type Container struct {
	Name           string
	UngroupedNodes []Node
	Groups         map[string][]Node
}

// GroupNames 排序后的组名
func (c *Container) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk 按解析顺序遍历：未分组在前，随后按组名顺序
func (c *Container) Walk(fn func(group string, n Node)) {
	for _, n := range c.UngroupedNodes {
		fn("", n)
	}
	for _, name := range c.GroupNames() {
		for _, n := range c.Groups[name] {
			fn(name, n)
		}
	}
}
