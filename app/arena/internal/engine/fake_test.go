package engine

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

type fakeMover struct {
	moveTo   []combat.Vec2
	follows  []float64
	stops    int
	resumes  int
	arrived  bool
	velocity combat.Vec2
}

func (m *fakeMover) MoveTo(p combat.Vec2) { m.moveTo = append(m.moveTo, p) }

func (m *fakeMover) Follow(_ combat.Actor, standoff float64) {
	m.follows = append(m.follows, standoff)
}

func (m *fakeMover) Stop() { m.stops++ }

func (m *fakeMover) Resume() { m.resumes++ }

func (m *fakeMover) HasArrived() bool { return m.arrived }

func (m *fakeMover) Velocity() combat.Vec2 { return m.velocity }

type fakeFighter struct {
	id       string
	pos      combat.Vec2
	health   float64
	stamina  float64
	maxStam  float64
	state    combat.State
	blocking bool
	charge   float64
	weapon   combat.Weapon
	armed    bool
	lastHit  time.Time
	canUnblk bool
	charged  bool
	speed    float64
	viewLock combat.Actor
	mover    *fakeMover

	lightAttacks int
	heavyStarts  int
	heavyEnds    int
	blocks       int
	unblocks     int

	onAttackStart func()
	onAttackEnd   func()
}

func newFakeFighter(id string, pos combat.Vec2) *fakeFighter {
	return &fakeFighter{
		id:       id,
		pos:      pos,
		health:   1,
		stamina:  1,
		maxStam:  100,
		weapon:   combat.Weapon{LightRange: 2, HeavyRange: 3, LightStaminaCost: 10, HeavyStaminaCost: 30},
		armed:    true,
		canUnblk: true,
		speed:    3,
		mover:    &fakeMover{},
	}
}

func (f *fakeFighter) ID() string                  { return f.id }
func (f *fakeFighter) Position() combat.Vec2       { return f.pos }
func (f *fakeFighter) HealthPercent() float64      { return f.health }
func (f *fakeFighter) StaminaPercent() float64     { return f.stamina }
func (f *fakeFighter) State() combat.State         { return f.state }
func (f *fakeFighter) IsBlocking() bool            { return f.blocking }
func (f *fakeFighter) HeavyChargePercent() float64 { return f.charge }
func (f *fakeFighter) AttackRange() float64        { return f.weapon.LightRange }
func (f *fakeFighter) LightDamage() float64        { return 10 }

func (f *fakeFighter) HeavyDamage() (lo, hi float64) { return 20, 30 }

func (f *fakeFighter) HeavyBlockDrainMultiplier() float64 { return 1.5 }

func (f *fakeFighter) SubscribeAttack(onStart, onEnd func()) func() {
	f.onAttackStart, f.onAttackEnd = onStart, onEnd
	return func() { f.onAttackStart, f.onAttackEnd = nil, nil }
}

func (f *fakeFighter) StaminaValue() float64 { return f.stamina * f.maxStam }

func (f *fakeFighter) MaxStamina() float64 { return f.maxStam }

func (f *fakeFighter) Weapon() (combat.Weapon, bool) { return f.weapon, f.armed }

func (f *fakeFighter) StaminaRegenBlockedUntil() time.Time { return time.Time{} }

func (f *fakeFighter) ExhaustedUntil() time.Time { return time.Time{} }

func (f *fakeFighter) LastHitAt() time.Time { return f.lastHit }

func (f *fakeFighter) StaminaDrainPerBlock() float64 { return 0.1 }

func (f *fakeFighter) LightAttack(combat.Target) { f.lightAttacks++ }

func (f *fakeFighter) StartHeavyAttack(combat.Target) { f.heavyStarts++ }

func (f *fakeFighter) EndHeavyAttack() { f.heavyEnds++ }

func (f *fakeFighter) EnterBlockState(combat.Target) {
	f.blocks++
	f.blocking = true
}

func (f *fakeFighter) ExitBlockState() {
	f.unblocks++
	f.blocking = false
}

func (f *fakeFighter) CanExitBlockState() bool { return f.canUnblk }

func (f *fakeFighter) MinChargeTimeMet() bool { return f.charged }

func (f *fakeFighter) DefaultMoveSpeed() float64 { return 3 }

func (f *fakeFighter) SetMoveSpeed(speed float64) { f.speed = speed }

func (f *fakeFighter) SetViewLock(target combat.Actor) { f.viewLock = target }

func (f *fakeFighter) Mover() combat.Mover { return f.mover }

// fakeClock 手动推进的时钟
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
