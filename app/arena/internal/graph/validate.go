package graph

import "github.com/cockroachdb/errors"

// Validate 汇总全部配置错误；运行时这些节点会被跳过，仅根错误是致命的
func (idx *Index) Validate() error {
	var errs []error
	if _, err := idx.Root(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool)
	idx.container.Walk(func(group string, n Node) {
		if n == nil {
			return
		}
		if seen[n.ID()] {
			errs = append(errs, errors.Wrapf(ErrDuplicateID, "node %s in group %q", n.ID(), group))
		}
		seen[n.ID()] = true

		for _, next := range n.Next() {
			if _, ok := idx.byID[next]; !ok {
				errs = append(errs, errors.Wrapf(ErrDanglingSuccessor, "%s -> %s", n.ID(), next))
			}
		}

		cn, ok := n.(*ConditionNode)
		if !ok {
			return
		}
		if !cn.Synced() {
			errs = append(errs, errors.Wrapf(ErrConnectorMismatch,
				"node %s: %d entries, %d connectors", cn.ID(), len(cn.Entries), len(cn.Connectors)))
		}
		if len(cn.NextNodeIDs) != 1 {
			errs = append(errs, errors.Wrapf(ErrSuccessorCount, "node %s has %d", cn.ID(), len(cn.NextNodeIDs)))
		}
		for i, c := range cn.Connectors {
			if !c.Valid() {
				errs = append(errs, errors.Wrapf(ErrInvalidConnector, "node %s connector %d: %q", cn.ID(), i, c))
			}
		}
		for i, e := range cn.Entries {
			if !e.Kind.IsBoolean() && !e.Operator.Valid() {
				errs = append(errs, errors.Wrapf(ErrInvalidOperator, "node %s entry %d: %q", cn.ID(), i, e.Operator))
			}
		}
	})
	return errors.Join(errs...)
}
