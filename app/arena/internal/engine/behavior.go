package engine

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
)

// Priority 动作优先级；Emergency 可以绕过决策间隔
type Priority int

const (
	PriorityIdle Priority = iota
	PriorityCombat
	PriorityEmergency
)

func (p Priority) String() string {
	switch p {
	case PriorityCombat:
		return "combat"
	case PriorityEmergency:
		return "emergency"
	default:
		return "idle"
	}
}

// Behavior 一种动作的全部行为，字段为 nil 时取默认
type Behavior struct {
	Priority Priority
	// Enter 成为当前动作时执行一次
	Enter func(e *Env)
	// Tick 每帧执行
	Tick func(e *Env)
	// Routine 跨帧子任务，当前动作没有子任务时创建
	Routine func() StepFunc
	// CanExit 退出守卫，nil 表示随时可退出
	CanExit func(e *Env, elapsed time.Duration) bool
	// Exit 退出时的清理，在子任务取消之后执行
	Exit func(e *Env)
	// Score 效用分数，nil 为 0
	Score func(s *utility.Scorer, snap combat.Snapshot) float64
	// CanExecute 是否可以作为候选，nil 表示总是可以
	CanExecute func(e *Env) bool
}

// Table 动作种类到行为的分派表
type Table map[graph.ActionKind]Behavior

// Lookup 未登记的种类返回零值 Behavior 与 false
func (t Table) Lookup(kind graph.ActionKind) (Behavior, bool) {
	b, ok := t[kind]
	return b, ok
}

// Clone 浅拷贝，便于替换单个动作
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

func stopMoving(e *Env) {
	e.Self.SetMoveSpeed(e.Self.DefaultMoveSpeed())
	e.Self.Mover().Stop()
}

// holdStill 攻击期间保持原地
func holdStill(e *Env) {
	e.Self.Mover().Stop()
}

func notAttacking(e *Env, _ time.Duration) bool {
	return e.Self.State() != combat.StateAttacking
}

// DefaultTable 内置动作
func DefaultTable() Table {
	return Table{
		graph.MoveToStanceRadius: {
			Priority: PriorityIdle,
			Tick: func(e *Env) {
				m := e.Self.Mover()
				m.Resume()
				m.Follow(e.Target, e.DefensiveRadius())
				e.Self.SetMoveSpeed(e.Self.DefaultMoveSpeed())
				e.Self.SetViewLock(e.Target)
			},
			Exit:  stopMoving,
			Score: (*utility.Scorer).MoveToStanceRadius,
			CanExecute: func(e *Env) bool {
				return e.Snap.Distance > e.DefensiveRadius()
			},
		},
		graph.MoveToAttackRange: {
			Priority: PriorityIdle,
			Tick: func(e *Env) {
				m := e.Self.Mover()
				m.Resume()
				m.Follow(e.Target, 0)
				e.Self.SetMoveSpeed(e.Self.DefaultMoveSpeed())
				e.Self.SetViewLock(e.Target)
			},
			Exit:  stopMoving,
			Score: (*utility.Scorer).MoveToAttackRange,
			CanExecute: func(e *Env) bool {
				return e.Snap.Distance <= e.DefensiveRadius()
			},
		},
		graph.CombatStance: {
			Priority: PriorityIdle,
			Tick: func(e *Env) {
				e.Self.SetViewLock(e.Target)
				e.Self.Mover().Resume()
			},
			Routine: stanceRoutine,
			Exit: func(e *Env) {
				e.Self.SetViewLock(nil)
				stopMoving(e)
			},
			Score: (*utility.Scorer).CombatStance,
			CanExecute: func(e *Env) bool {
				return e.Snap.Distance <= e.DefensiveRadius()
			},
		},
		graph.HoldBlock: {
			Priority: PriorityEmergency,
			Enter: func(e *Env) {
				e.Self.EnterBlockState(e.Target)
				e.Self.Mover().Stop()
			},
			// 格挡被打断或作为根动作启动时补上
			Tick: func(e *Env) {
				if !e.Self.IsBlocking() {
					e.Self.EnterBlockState(e.Target)
				}
				e.Self.Mover().Stop()
			},
			CanExit: func(e *Env, _ time.Duration) bool {
				return e.Self.CanExitBlockState()
			},
			Exit: func(e *Env) {
				e.Self.ExitBlockState()
				e.Self.Mover().Resume()
			},
			Score: (*utility.Scorer).HoldBlock,
			CanExecute: func(e *Env) bool {
				return e.Snap.Distance <= e.Snap.TargetAttackRange
			},
		},
		graph.LightAttack: {
			Priority: PriorityCombat,
			Enter: func(e *Env) {
				e.Self.LightAttack(e.Target)
				e.Self.Mover().Stop()
			},
			Tick: holdStill,
			CanExit: notAttacking,
			Score:   (*utility.Scorer).LightAttack,
			CanExecute: func(e *Env) bool {
				s := e.Snap
				return s.HasWeapon && s.StaminaValue >= s.LightStaminaCost && s.Distance <= s.LightRange
			},
		},
		graph.StartHeavyAttack: {
			Priority: PriorityCombat,
			Enter: func(e *Env) {
				e.Self.StartHeavyAttack(e.Target)
				e.Self.Mover().Stop()
			},
			Tick: holdStill,
			CanExit: func(e *Env, _ time.Duration) bool {
				return e.Self.MinChargeTimeMet()
			},
			Score: (*utility.Scorer).StartHeavyAttack,
			CanExecute: func(e *Env) bool {
				s := e.Snap
				return s.HasWeapon && s.StaminaValue > 0 && s.Distance <= s.HeavyRange
			},
		},
		graph.ReleaseHeavyAttack: {
			Priority: PriorityCombat,
			Enter: func(e *Env) {
				e.Self.EndHeavyAttack()
			},
			CanExit: notAttacking,
			Score:   (*utility.Scorer).ReleaseHeavyAttack,
			CanExecute: func(e *Env) bool {
				return e.Snap.MinChargeTimeMet
			},
		},
		graph.DodgeAttack: {
			Priority: PriorityEmergency,
			Tick: func(e *Env) {
				e.Self.Mover().Resume()
			},
			Routine: dodgeRoutine,
			CanExit: func(e *Env, elapsed time.Duration) bool {
				return elapsed >= e.Params.MaxDodgeDuration ||
					e.Snap.Distance > e.Snap.TargetAttackRange*e.Params.DodgeSafetyMultiple
			},
			Score: (*utility.Scorer).DodgeAttack,
		},
		graph.Retreat: {
			Priority: PriorityEmergency,
			Tick: func(e *Env) {
				e.Self.Mover().Resume()
			},
			Routine: retreatRoutine,
			CanExit: func(e *Env, elapsed time.Duration) bool {
				return elapsed >= e.Params.MaxRetreatDuration ||
					e.Snap.Distance > e.Snap.TargetAttackRange
			},
			Exit:  stopMoving,
			Score: (*utility.Scorer).Retreat,
			CanExecute: func(e *Env) bool {
				return e.Snap.HealthPercent < e.Params.HealthRetreatThreshold ||
					e.Snap.StaminaPercent < e.Params.StaminaRetreatThreshold
			},
		},
	}
}
