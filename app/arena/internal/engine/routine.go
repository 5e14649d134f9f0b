package engine

import (
	"context"
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

type stancePhase int

const (
	stancePick stancePhase = iota
	stanceMoving
	stanceWaiting
)

// stanceRoutine 围绕目标游走：随机偏转角度和半径选点，到达后停留 StanceWait 再重新选点
func stanceRoutine() StepFunc {
	var (
		started bool
		phase   stancePhase
		waitEnd time.Time
	)
	return func(_ context.Context, e *Env) Status {
		if !started {
			e.Self.SetViewLock(e.Target)
			e.Self.SetMoveSpeed(e.Params.StanceMoveSpeed)
			started = true
		}

		switch phase {
		case stancePick:
			center := e.Snap.TargetPosition
			step := e.RandRange(e.Params.MinStanceStep, e.Params.MaxStanceStep)
			if e.Rand() < 0.5 {
				step = -step
			}
			angle := e.Snap.Position.Sub(center).Angle() + step

			radius := e.Params.DefensiveRadius(e.Snap.HealthPercent)
			e.SetDefensiveRadius(radius)
			jitter := e.Params.StanceRadiusJitter
			dist := radius + e.RandRange(-jitter, jitter)

			e.Self.Mover().MoveTo(combat.Polar(center, angle, dist))
			phase = stanceMoving

		case stanceMoving:
			if e.Self.Mover().HasArrived() {
				waitEnd = e.Snap.Now.Add(e.Params.StanceWait)
				phase = stanceWaiting
			}

		case stanceWaiting:
			if !e.Snap.Now.Before(waitEnd) {
				phase = stancePick
			}
		}
		return StatusRunning
	}
}

// away 从目标指向自身方向上 dist 处的点
func away(s combat.Snapshot, dist float64) combat.Vec2 {
	dir := s.Position.Sub(s.TargetPosition).Normalize()
	return s.Position.Add(dir.Scale(dist))
}

// dodgeRoutine 面向目标沿反方向闪开 DodgeDistance
func dodgeRoutine() StepFunc {
	return func(_ context.Context, e *Env) Status {
		e.Self.SetViewLock(e.Target)
		e.Self.SetMoveSpeed(e.Self.DefaultMoveSpeed())
		e.Self.Mover().MoveTo(away(e.Snap, e.Params.DodgeDistance))
		return StatusSuccess
	}
}

// retreatRoutine 解除朝向锁定后撤离 RetreatDistance，到达即结束
func retreatRoutine() StepFunc {
	moving := false
	return func(_ context.Context, e *Env) Status {
		if !moving {
			e.Self.SetViewLock(nil)
			e.Self.SetMoveSpeed(e.Self.DefaultMoveSpeed())
			e.Self.Mover().MoveTo(away(e.Snap, e.Params.RetreatDistance))
			moving = true
			return StatusRunning
		}
		if e.Self.Mover().HasArrived() {
			return StatusSuccess
		}
		return StatusRunning
	}
}
