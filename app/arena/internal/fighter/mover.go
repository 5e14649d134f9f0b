package fighter

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

// mover 运动学移动，状态由所属 Fighter 的锁保护
type mover struct {
	f *Fighter
}

var _ combat.Mover = (*mover)(nil)

// MoveTo 目标点在场地外时记录告警并忽略
func (m *mover) MoveTo(p combat.Vec2) {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.bounds.Contains(p) {
		f.logger.Warn("move target outside arena, ignoring", "x", p.X, "y", p.Y)
		return
	}
	f.dest = p
	f.hasDest = true
	f.follow = nil
}

func (m *mover) Follow(target combat.Actor, standoff float64) {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if target == nil {
		f.logger.Warn("follow target is nil, ignoring")
		return
	}
	f.follow = target
	f.standoff = max(0, standoff)
}

func (m *mover) Stop() {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.velocity = combat.Vec2{}
}

func (m *mover) Resume() {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = false
}

func (m *mover) HasArrived() bool {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.follow != nil {
		return false
	}
	return !f.hasDest || f.pos.Dist(f.dest) <= f.tolerance
}

func (m *mover) Velocity() combat.Vec2 {
	f := m.f
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.velocity
}

// destination 跟随目标时返回目标方向上距其 standoff 的点
// 调用方不能持有 f.mu
func (f *Fighter) destination() (combat.Vec2, bool) {
	f.mu.Lock()
	follow, standoff := f.follow, f.standoff
	dest, ok := f.dest, f.hasDest
	pos := f.pos
	f.mu.Unlock()

	if follow == nil {
		return dest, ok
	}
	tp := follow.Position()
	dir := pos.Sub(tp).Normalize()
	return tp.Add(dir.Scale(standoff)), true
}

// move 以当前速度向目标点移动 dt
func (f *Fighter) move(dt time.Duration) {
	dest, ok := f.destination()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !ok || f.stopped || f.state == combat.StateDeath || f.state == combat.StateStunned {
		f.velocity = combat.Vec2{}
		return
	}

	delta := dest.Sub(f.pos)
	dist := delta.Len()
	if dist <= f.tolerance {
		f.velocity = combat.Vec2{}
		return
	}
	step := f.speed * dt.Seconds()
	if step > dist {
		step = dist
	}
	dir := delta.Normalize()
	f.velocity = dir.Scale(f.speed)
	f.pos = f.bounds.Clamp(f.pos.Add(dir.Scale(step)))
}
