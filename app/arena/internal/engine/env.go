package engine

import (
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Env 行为执行时可见的上下文，每帧构造一次
type Env struct {
	Self   combat.Character
	Target combat.Target
	Snap   combat.Snapshot
	Params *Params
	Rand   func() float64
	Logger logger.Logger

	radius *float64
}

// DefensiveRadius 当前防御半径
func (e *Env) DefensiveRadius() float64 {
	if e.radius == nil {
		return e.Snap.DefensiveRadius
	}
	return *e.radius
}

// SetDefensiveRadius 更新所属循环的防御半径，下一帧的快照生效
func (e *Env) SetDefensiveRadius(r float64) {
	if e.radius != nil {
		*e.radius = r
	}
}

// RandRange [lo, hi) 均匀分布
func (e *Env) RandRange(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Rand()
}
