package condition

import (
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// SelfInAttackRangeMargin 判断自身是否处于目标攻击范围时的放大系数
const SelfInAttackRangeMargin = 1.1

// Resolver 从快照读取条件的实际值
type Resolver func(s combat.Snapshot, l logger.Logger) float64

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// DefaultResolvers 内置条件种类的取值
func DefaultResolvers() map[graph.ConditionKind]Resolver {
	return map[graph.ConditionKind]Resolver{
		graph.CheckDistance: func(s combat.Snapshot, _ logger.Logger) float64 {
			return s.Distance
		},
		graph.CheckHealth: func(s combat.Snapshot, _ logger.Logger) float64 {
			return s.HealthPercent * 100
		},
		graph.CheckStamina: func(s combat.Snapshot, _ logger.Logger) float64 {
			return s.StaminaPercent * 100
		},
		graph.TargetInAttackRange: func(s combat.Snapshot, l logger.Logger) float64 {
			if !s.HasWeapon {
				l.Warn("no weapon equipped", "condition", graph.TargetInAttackRange)
				return 0
			}
			return boolValue(s.Distance <= s.LightRange)
		},
		graph.TargetRangeCoverage: func(s combat.Snapshot, l logger.Logger) float64 {
			if !s.HasWeapon || s.LightRange <= 0 {
				l.Warn("no weapon equipped", "condition", graph.TargetRangeCoverage)
				return 0
			}
			cover := (s.LightRange - s.Distance) / s.LightRange
			return clamp01(cover) * 100
		},
		graph.CombatTargetAttacking: func(s combat.Snapshot, _ logger.Logger) float64 {
			return boolValue(s.TargetAttacking())
		},
		graph.SelfInAttackRange: func(s combat.Snapshot, _ logger.Logger) float64 {
			return boolValue(s.Distance <= s.TargetAttackRange*SelfInAttackRangeMargin)
		},
		graph.HeavySwingChargeProgress: func(s combat.Snapshot, l logger.Logger) float64 {
			if s.State != combat.StateAttacking {
				l.Warn("heavy swing progress read outside an attack", "state", s.State.String())
				return 0
			}
			return s.HeavyChargePercent * 100
		},
		graph.HeavySwingCurrentStaminaCost: func(s combat.Snapshot, l logger.Logger) float64 {
			if s.MaxStamina <= 0 {
				l.Warn("max stamina is zero", "condition", graph.HeavySwingCurrentStaminaCost)
				return 0
			}
			return s.HeavySwingStaminaCost / s.MaxStamina * 100
		},
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
