package fighter

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func newWorld(t *testing.T, cfg ArenaConfig) (*World, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWorld(cfg, logger.NewNoop(), WithWorldClock(clk.Now))
	w.Step(clk.Now())
	return w, clk
}

func spawn(t *testing.T, w *World, id string, x, y float64, opts ...Option) *Fighter {
	t.Helper()
	f, err := w.Spawn(id, combat.Vec2{X: x, Y: y}, opts...)
	require.NoError(t, err)
	return f
}

func TestLightAttackHit(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	starts, ends := 0, 0
	cancel := a.SubscribeAttack(func() { starts++ }, func() { ends++ })
	defer cancel()

	t0 := clk.Now()
	a.LightAttack(b)
	assert.Equal(t, combat.StateAttacking, a.State())
	assert.Equal(t, 1, starts)
	assert.InDelta(t, 88.0, a.StaminaValue(), 1e-9)
	assert.Equal(t, t0.Add(time.Second), a.StaminaRegenBlockedUntil())

	w.Step(clk.Advance(200 * time.Millisecond))
	assert.InDelta(t, 0.9, b.HealthPercent(), 1e-9)
	assert.Equal(t, combat.StateStunned, b.State())
	assert.Equal(t, clk.Now(), b.LastHitAt())
	assert.Equal(t, combat.StateAttacking, a.State(), "swing still recovering")

	w.Step(clk.Advance(200 * time.Millisecond))
	assert.Equal(t, combat.StateNormal, a.State())
	assert.Equal(t, 1, ends)
	assert.Equal(t, combat.StateStunned, b.State())

	w.Step(clk.Advance(100 * time.Millisecond))
	assert.Equal(t, combat.StateNormal, b.State())
}

func TestLightAttackOutOfReach(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 5, 0)

	a.LightAttack(b)
	w.Step(clk.Advance(200 * time.Millisecond))
	w.Step(clk.Advance(200 * time.Millisecond))
	assert.InDelta(t, 1.0, b.HealthPercent(), 1e-9)
	assert.True(t, b.LastHitAt().IsZero())
}

func TestAttackPreconditions(t *testing.T) {
	cfg := DefaultArenaConfig()
	cfg.Stats.Weapon.LightStaminaCost = 150
	w, _ := newWorld(t, cfg)
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)
	c := spawn(t, w, "c", 0, 1, Unarmed())

	a.LightAttack(b)
	assert.Equal(t, combat.StateNormal, a.State(), "not enough stamina")
	assert.InDelta(t, 100.0, a.StaminaValue(), 1e-9)

	_, armed := c.Weapon()
	assert.False(t, armed)
	assert.Zero(t, c.AttackRange())
	c.LightAttack(b)
	c.StartHeavyAttack(b)
	assert.Equal(t, combat.StateNormal, c.State())

	b.EnterBlockState(a)
	b.StartHeavyAttack(a)
	assert.Equal(t, combat.StateBlocking, b.State(), "cannot charge while blocking")
}

func TestHeavyAttackCharge(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 2, 0)

	a.EndHeavyAttack()
	assert.Equal(t, combat.StateNormal, a.State(), "release without charge is ignored")

	a.StartHeavyAttack(b)
	assert.Equal(t, combat.StateAttacking, a.State())
	assert.Zero(t, a.HeavyChargePercent())
	assert.False(t, a.MinChargeTimeMet())

	clk.Advance(600 * time.Millisecond)
	assert.InDelta(t, 0.5, a.HeavyChargePercent(), 1e-9)
	assert.True(t, a.MinChargeTimeMet())

	a.EndHeavyAttack()
	assert.Zero(t, a.HeavyChargePercent())
	assert.InDelta(t, 70.0, a.StaminaValue(), 1e-9)

	w.Step(clk.Advance(300 * time.Millisecond))
	assert.InDelta(t, 0.725, b.HealthPercent(), 1e-9)

	clk.Advance(5 * time.Second)
	a.StartHeavyAttack(b)
	assert.Equal(t, combat.StateAttacking, a.State(), "swing not finished yet")
}

func TestHitInterruptsCharge(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	ends := 0
	b.SubscribeAttack(nil, func() { ends++ })

	b.StartHeavyAttack(a)
	a.LightAttack(b)
	w.Step(clk.Advance(200 * time.Millisecond))

	assert.Equal(t, combat.StateStunned, b.State())
	assert.Zero(t, b.HeavyChargePercent())
	assert.False(t, b.MinChargeTimeMet())
	assert.Equal(t, 1, ends)
}

func TestBlock(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	b.EnterBlockState(a)
	assert.True(t, b.IsBlocking())
	assert.Same(t, a, b.ViewLock())
	assert.False(t, b.CanExitBlockState())

	a.LightAttack(b)
	w.Step(clk.Advance(200 * time.Millisecond))
	assert.InDelta(t, 1.0, b.HealthPercent(), 1e-9)
	assert.InDelta(t, 90.0, b.StaminaValue(), 1e-9)
	assert.True(t, b.IsBlocking())
	assert.False(t, b.CanExitBlockState())

	w.Step(clk.Advance(800 * time.Millisecond))
	assert.True(t, b.CanExitBlockState())
	a.StartHeavyAttack(b)
	clk.Advance(400 * time.Millisecond)
	a.EndHeavyAttack()
	w.Step(clk.Advance(300 * time.Millisecond))
	assert.InDelta(t, 75.0, b.StaminaValue(), 1e-9, "heavy hits drain more")

	b.ExitBlockState()
	assert.False(t, b.IsBlocking())
	assert.True(t, b.CanExitBlockState())
}

func TestGuardBreak(t *testing.T) {
	cfg := DefaultArenaConfig()
	cfg.Stats.StaminaDrainPerBlock = 1
	w, clk := newWorld(t, cfg)
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	b.EnterBlockState(a)
	a.LightAttack(b)
	now := clk.Advance(200 * time.Millisecond)
	w.Step(now)

	assert.Equal(t, combat.StateStunned, b.State())
	assert.Zero(t, b.StaminaValue())
	assert.Equal(t, now.Add(cfg.Stats.ExhaustDuration), b.ExhaustedUntil())

	w.Step(clk.Advance(time.Second))
	assert.Equal(t, combat.StateNormal, b.State())
	b.EnterBlockState(a)
	assert.False(t, b.IsBlocking(), "exhausted fighters cannot block")
}

func TestStaminaRegen(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 8, 0)

	a.LightAttack(b)
	w.Step(clk.Advance(400 * time.Millisecond))
	w.Step(clk.Advance(600 * time.Millisecond))
	assert.InDelta(t, 88.0, a.StaminaValue(), 1e-9, "regen delay")

	w.Step(clk.Advance(400 * time.Millisecond))
	assert.InDelta(t, 94.0, a.StaminaValue(), 1e-9)

	w.Step(clk.Advance(time.Second))
	assert.InDelta(t, 100.0, a.StaminaValue(), 1e-9)
}

func TestKill(t *testing.T) {
	cfg := DefaultArenaConfig()
	cfg.Stats.LightDamage = 100
	w, clk := newWorld(t, cfg)
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	a.LightAttack(b)
	w.Step(clk.Advance(200 * time.Millisecond))

	assert.Equal(t, combat.StateDeath, b.State())
	assert.False(t, b.Alive())
	assert.Equal(t, 1, w.Alive())
	assert.Nil(t, w.FindTarget(a))

	b.LightAttack(a)
	assert.Equal(t, combat.StateDeath, b.State())
}

func TestMover(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	m := a.Mover()

	assert.True(t, m.HasArrived(), "no destination")
	m.MoveTo(combat.Vec2{X: 3})
	assert.False(t, m.HasArrived())

	w.Step(clk.Advance(500 * time.Millisecond))
	assert.InDelta(t, 1.5, a.Position().X, 1e-9)
	assert.InDelta(t, 3.0, m.Velocity().X, 1e-9)

	m.MoveTo(combat.Vec2{X: 30})
	m.Stop()
	w.Step(clk.Advance(500 * time.Millisecond))
	assert.InDelta(t, 1.5, a.Position().X, 1e-9, "stopped")
	assert.Equal(t, combat.Vec2{}, m.Velocity())

	m.Resume()
	w.Step(clk.Advance(time.Second))
	assert.InDelta(t, 3.0, a.Position().X, 1e-9, "outside target ignored")
	assert.True(t, m.HasArrived())

	w.Step(clk.Advance(100 * time.Millisecond))
	assert.Equal(t, combat.Vec2{}, m.Velocity())
}

func TestMoveSpeedAndFollow(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 5, 0)

	a.SetMoveSpeed(1)
	a.Mover().Follow(b, 2)
	w.Step(clk.Advance(time.Second))
	assert.InDelta(t, 1.0, a.Position().X, 1e-9)
	assert.False(t, a.Mover().HasArrived(), "following never arrives")

	a.SetMoveSpeed(a.DefaultMoveSpeed())
	w.Step(clk.Advance(time.Second))
	assert.InDelta(t, 3.0, a.Position().X, 1e-9)

	a.Mover().MoveTo(combat.Vec2{X: 3, Y: 3})
	w.Step(clk.Advance(time.Second))
	assert.InDelta(t, 3.0, a.Position().Y, 1e-9, "MoveTo cancels follow")
}

func TestStunnedDoesNotMove(t *testing.T) {
	w, clk := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 1, 0)

	b.Mover().MoveTo(combat.Vec2{X: 5})
	a.LightAttack(b)
	w.Step(clk.Advance(200 * time.Millisecond))
	pos := b.Position()
	w.Step(clk.Advance(100 * time.Millisecond))
	assert.Equal(t, pos, b.Position())
}

func TestWorldRoster(t *testing.T) {
	w, _ := newWorld(t, DefaultArenaConfig())
	a := spawn(t, w, "a", 0, 0)
	b := spawn(t, w, "b", 3, 0)
	spawn(t, w, "c", 1, 0)

	_, err := w.Spawn("a", combat.Vec2{})
	assert.True(t, errors.Is(err, ErrDuplicateFighter))

	assert.Equal(t, "c", w.FindTarget(a).ID())
	w.Remove("c")
	assert.Equal(t, "b", w.FindTarget(a).ID())

	got, ok := w.Fighter("b")
	require.True(t, ok)
	assert.Same(t, b, got)

	ids := make([]string, 0, 2)
	for _, f := range w.Fighters() {
		ids = append(ids, f.ID())
	}
	assert.Equal(t, []string{"a", "b"}, ids)

	far := spawn(t, w, "far", 50, 50)
	assert.Equal(t, combat.Vec2{X: 10, Y: 10}, far.Position(), "spawn clamped to bounds")
}

func TestRunStopsOnCancel(t *testing.T) {
	w := NewWorld(DefaultArenaConfig(), logger.NewNoop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("world did not stop")
	}
}
