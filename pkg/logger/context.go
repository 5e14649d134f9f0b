package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	npcIDKey ctxKey = iota
	nodeIDKey
)

// ContextFieldExtractor 从 context 中提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// WithNPC 在 context 中记录 NPC 标识
func WithNPC(ctx context.Context, npcID string) context.Context {
	return context.WithValue(ctx, npcIDKey, npcID)
}

// WithNode 在 context 中记录当前图节点
func WithNode(ctx context.Context, nodeID string) context.Context {
	return context.WithValue(ctx, nodeIDKey, nodeID)
}

// NPCFromContext 读取 NPC 标识
func NPCFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(npcIDKey).(string)
	return id, ok
}

// DefaultContextExtractor 提取 npc_id 与 node_id
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if id, ok := ctx.Value(npcIDKey).(string); ok {
		fields = append(fields, zap.String("npc_id", id))
	}
	if id, ok := ctx.Value(nodeIDKey).(string); ok {
		fields = append(fields, zap.String("node_id", id))
	}
	return fields
}
