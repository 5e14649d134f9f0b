package graph

import "github.com/cockroachdb/errors"

var (
	ErrRootNotFound      = errors.New("graph: root node not found")
	ErrAmbiguousRoot     = errors.New("graph: more than one root node")
	ErrRootNotAction     = errors.New("graph: root node is not an action node")
	ErrConnectorMismatch = errors.New("graph: connector count does not match entries")
	ErrInvalidOperator   = errors.New("graph: invalid comparison operator")
	ErrInvalidConnector  = errors.New("graph: invalid connector")
	ErrDanglingSuccessor = errors.New("graph: successor id resolves to no node")
	ErrSuccessorCount    = errors.New("graph: condition node must have exactly one successor")
	ErrUnknownNodeType   = errors.New("graph: unknown node type")
	ErrDuplicateID       = errors.New("graph: duplicate node id")
)
