package engine

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func action(id string, kind graph.ActionKind, next ...string) *graph.ActionNode {
	return &graph.ActionNode{BaseNode: graph.BaseNode{NodeID: id, NextNodeIDs: next}, Kind: kind}
}

func root(n *graph.ActionNode) *graph.ActionNode {
	n.IsRootNode = true
	return n
}

func cond(id string, priority int, next string, entries ...graph.ConditionEntry) *graph.ConditionNode {
	n := &graph.ConditionNode{
		BaseNode: graph.BaseNode{NodeID: id, NextNodeIDs: []string{next}},
		Entries:  append([]graph.ConditionEntry{}, entries...),
		Priority: priority,
	}
	n.Resync()
	return n
}

func distance(op graph.Operator, v float64) graph.ConditionEntry {
	return graph.ConditionEntry{Kind: graph.CheckDistance, Operator: op, Value: v}
}

type recorder struct {
	outcomes []Outcome
	refused  []graph.ActionKind
	ticks    int
}

func (r *recorder) SelectorOutcome(_ string, o Outcome) { r.outcomes = append(r.outcomes, o) }
func (r *recorder) ExitRefused(kind graph.ActionKind)   { r.refused = append(r.refused, kind) }
func (r *recorder) TickDuration(time.Duration)          { r.ticks++ }

type harness struct {
	self    *fakeFighter
	target  *fakeFighter
	clock   *fakeClock
	rec     *recorder
	loop    *Loop
	changes []ActionChange
}

func newHarness(t *testing.T, nodes []graph.Node, opts ...LoopOption) *harness {
	t.Helper()
	h := &harness{
		self:   newFakeFighter("npc", combat.Vec2{}),
		target: newFakeFighter("player", combat.Vec2{X: 2}),
		clock:  newFakeClock(),
		rec:    &recorder{},
	}
	finder := TargetFinderFunc(func(combat.Character) combat.Target {
		if h.target == nil {
			return nil
		}
		return h.target
	})
	idx := graph.NewIndex(&graph.Container{Name: "test", UngroupedNodes: nodes}, logger.NewNoop())
	base := []LoopOption{
		WithClock(h.clock.Now),
		WithRand(func() float64 { return 0.5 }),
		WithReporter(h.rec),
		WithObserver(ObserverFunc(func(c ActionChange) { h.changes = append(h.changes, c) })),
	}
	loop, err := NewLoop(h.self, finder, idx, utility.NewStore(nil, logger.NewNoop()), logger.NewNoop(), append(base, opts...)...)
	require.NoError(t, err)
	h.loop = loop
	return h
}

func (h *harness) tick() bool {
	h.clock.Advance(50 * time.Millisecond)
	return h.loop.Tick(context.Background())
}

func TestMoveToAttackRangeThenLightAttack(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("approach", graph.MoveToAttackRange, "close")),
		cond("close", 0, "strike", distance(graph.LessEqual, 1.5)),
		action("strike", graph.LightAttack),
	})
	require.Equal(t, "approach", h.loop.Current().ID())

	assert.False(t, h.tick())
	assert.Equal(t, "approach", h.loop.Current().ID())
	assert.Equal(t, []float64{0}, h.self.mover.follows)

	h.target.pos = combat.Vec2{X: 1}
	assert.True(t, h.tick())
	assert.Equal(t, "strike", h.loop.Current().ID())
	assert.Equal(t, 2, h.self.mover.stops, "exit of approach, then entry of strike")
	assert.Equal(t, 1, h.self.lightAttacks)

	h.tick()
	assert.Equal(t, 1, h.self.lightAttacks)

	require.Len(t, h.changes, 2)
	assert.Equal(t, graph.MoveToAttackRange, h.changes[0].To)
	assert.Equal(t, graph.MoveToAttackRange, h.changes[1].From)
	assert.Equal(t, graph.LightAttack, h.changes[1].To)
	assert.Equal(t, "strike", h.changes[1].NodeID)

	assert.Equal(t, "approach", (<-h.loop.Changes()).NodeID)
	assert.Equal(t, "strike", (<-h.loop.Changes()).NodeID)
	assert.Equal(t, 3, h.rec.ticks)
}

func TestConditionPriorityOrder(t *testing.T) {
	build := func(first graph.ConditionEntry) []graph.Node {
		return []graph.Node{
			root(action("idle", graph.MoveToStanceRadius, "c3", "c1", "c2")),
			cond("c3", 3, "a3", distance(graph.GreaterEqual, 0)),
			cond("c1", 1, "a1", first),
			cond("c2", 2, "a2", distance(graph.GreaterEqual, 0)),
			action("a1", graph.CombatStance),
			action("a2", graph.CombatStance),
			action("a3", graph.CombatStance),
		}
	}

	h := newHarness(t, build(distance(graph.GreaterEqual, 0)))
	assert.True(t, h.tick())
	assert.Equal(t, "a1", h.loop.Current().ID())

	h = newHarness(t, build(distance(graph.GreaterEqual, 100)))
	assert.True(t, h.tick())
	assert.Equal(t, "a2", h.loop.Current().ID())
}

func TestOneTransitionPerTick(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("a", graph.MoveToStanceRadius, "b")),
		action("b", graph.MoveToAttackRange, "c"),
		action("c", graph.CombatStance),
	})
	assert.True(t, h.tick())
	assert.Equal(t, "b", h.loop.Current().ID())
	assert.True(t, h.tick())
	assert.Equal(t, "c", h.loop.Current().ID())
	assert.False(t, h.tick())
}

func TestActionTriggersFireOnEntry(t *testing.T) {
	nodes := func(kind graph.ActionKind) []graph.Node {
		return []graph.Node{
			root(action("approach", graph.MoveToAttackRange, "close")),
			cond("close", 0, "act", distance(graph.LessEqual, 1.5)),
			action("act", kind),
		}
	}

	t.Run("light attack", func(t *testing.T) {
		h := newHarness(t, nodes(graph.LightAttack))
		h.target.pos = combat.Vec2{X: 1}
		require.True(t, h.tick())
		for range 5 {
			h.tick()
		}
		assert.Equal(t, 1, h.self.lightAttacks)
	})

	t.Run("start heavy attack", func(t *testing.T) {
		h := newHarness(t, nodes(graph.StartHeavyAttack))
		h.target.pos = combat.Vec2{X: 1}
		require.True(t, h.tick())
		for range 5 {
			h.tick()
		}
		assert.Equal(t, 1, h.self.heavyStarts)
	})

	t.Run("release heavy attack", func(t *testing.T) {
		h := newHarness(t, nodes(graph.ReleaseHeavyAttack))
		h.target.pos = combat.Vec2{X: 1}
		require.True(t, h.tick())
		h.tick()
		assert.Equal(t, 1, h.self.heavyEnds)
	})

	t.Run("hold block", func(t *testing.T) {
		h := newHarness(t, nodes(graph.HoldBlock))
		h.target.pos = combat.Vec2{X: 1}
		require.True(t, h.tick())
		assert.Equal(t, 1, h.self.blocks)
		h.tick()
		assert.Equal(t, 1, h.self.blocks)

		// 格挡被打断后下一帧恢复
		h.self.blocking = false
		h.tick()
		assert.Equal(t, 2, h.self.blocks)
	})
}

func TestLightAttackExitGuard(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("strike", graph.LightAttack, "back")),
		action("back", graph.MoveToAttackRange),
	})
	h.self.state = combat.StateAttacking

	assert.False(t, h.tick())
	assert.Equal(t, "strike", h.loop.Current().ID())
	assert.Equal(t, []graph.ActionKind{graph.LightAttack}, h.rec.refused)

	e := h.loop.env(h.target, h.clock.Now())
	assert.False(t, h.loop.Machine().TryExit(e))

	h.self.state = combat.StateNormal
	assert.True(t, h.loop.Machine().TryExit(e))
	assert.True(t, h.tick())
	assert.Equal(t, "back", h.loop.Current().ID())
}

func newEnv(h *harness) *Env {
	return h.loop.env(h.target, h.clock.Now())
}

func TestExitGuards(t *testing.T) {
	t.Run("hold block", func(t *testing.T) {
		h := newHarness(t, []graph.Node{root(action("block", graph.HoldBlock))})
		h.tick()
		assert.Equal(t, 1, h.self.blocks)

		h.self.canUnblk = false
		assert.False(t, h.loop.Machine().TryExit(newEnv(h)))
		assert.Equal(t, 0, h.self.unblocks)

		h.self.canUnblk = true
		resumes := h.self.mover.resumes
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))
		assert.Equal(t, 1, h.self.unblocks)
		assert.Equal(t, resumes+1, h.self.mover.resumes)
	})

	t.Run("start heavy attack", func(t *testing.T) {
		h := newHarness(t, []graph.Node{root(action("charge", graph.StartHeavyAttack))})
		assert.False(t, h.loop.Machine().TryExit(newEnv(h)))
		h.self.charged = true
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))
	})

	t.Run("dodge", func(t *testing.T) {
		h := newHarness(t, []graph.Node{root(action("dodge", graph.DodgeAttack))})
		h.target.pos = combat.Vec2{X: 1}
		assert.False(t, h.loop.Machine().TryExit(newEnv(h)))

		h.target.pos = combat.Vec2{X: 2.5}
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))

		h.target.pos = combat.Vec2{X: 1}
		h.clock.Advance(DefaultParams().MaxDodgeDuration)
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))
	})

	t.Run("retreat", func(t *testing.T) {
		h := newHarness(t, []graph.Node{root(action("flee", graph.Retreat))})
		h.target.pos = combat.Vec2{X: 1.5}
		assert.False(t, h.loop.Machine().TryExit(newEnv(h)))

		h.target.pos = combat.Vec2{X: 2.1}
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))

		h.target.pos = combat.Vec2{X: 1.5}
		h.clock.Advance(DefaultParams().MaxRetreatDuration)
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))
	})

	t.Run("unknown kind", func(t *testing.T) {
		h := newHarness(t, []graph.Node{root(action("taunt", graph.ActionKind("Taunt")))})
		h.tick()
		assert.True(t, h.loop.Machine().TryExit(newEnv(h)))
	})
}

func TestCombatStanceRoutine(t *testing.T) {
	h := newHarness(t, []graph.Node{root(action("stance", graph.CombatStance))})
	h.self.pos = combat.Vec2{X: 3}
	h.target.pos = combat.Vec2{}

	h.tick()
	task := h.loop.Machine().Task()
	require.NotNil(t, task)
	assert.Equal(t, StatusRunning, task.Status())
	require.Len(t, h.self.mover.moveTo, 1)
	assert.InDelta(t, 3, h.self.mover.moveTo[0].Len(), 1e-9)
	assert.InDelta(t, 0.75, h.self.mover.moveTo[0].Angle(), 1e-9)
	assert.Equal(t, combat.Actor(h.target), h.self.viewLock)
	assert.Equal(t, DefaultParams().StanceMoveSpeed, h.self.speed)
	assert.InDelta(t, 3, h.loop.DefensiveRadius(), 1e-9)

	h.self.mover.arrived = true
	h.tick()
	h.tick()
	assert.Len(t, h.self.mover.moveTo, 1)

	h.clock.Advance(time.Second)
	h.tick()
	h.tick()
	assert.Len(t, h.self.mover.moveTo, 2)

	require.True(t, h.loop.Machine().TryExit(newEnv(h)))
	assert.Nil(t, h.loop.Machine().Task())
	assert.Equal(t, StatusFailure, task.Status())
	assert.Nil(t, h.self.viewLock)
	assert.Equal(t, h.self.DefaultMoveSpeed(), h.self.speed)
}

func TestDodgeRoutineRunsOnce(t *testing.T) {
	h := newHarness(t, []graph.Node{root(action("dodge", graph.DodgeAttack))})
	h.target.pos = combat.Vec2{X: 1}

	h.tick()
	h.tick()
	require.Len(t, h.self.mover.moveTo, 1)
	assert.InDelta(t, -DefaultParams().DodgeDistance, h.self.mover.moveTo[0].X, 1e-9)
	assert.Equal(t, StatusSuccess, h.loop.Machine().Task().Status())
}

func TestDeathSkipsSideEffects(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("approach", graph.MoveToAttackRange, "close")),
		cond("close", 0, "strike", distance(graph.LessEqual, 1.5)),
		action("strike", graph.LightAttack),
	})
	h.self.state = combat.StateDeath

	assert.False(t, h.tick())
	assert.Empty(t, h.self.mover.follows)
}

func TestNoTargetIdles(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("a", graph.MoveToAttackRange, "b")),
		action("b", graph.CombatStance),
	})
	h.target = nil

	assert.False(t, h.tick())
	assert.Equal(t, "a", h.loop.Current().ID())
	assert.Empty(t, h.self.mover.follows)
}

func TestIncomingAttackFlag(t *testing.T) {
	h := newHarness(t, []graph.Node{root(action("stance", graph.CombatStance))})
	h.tick()
	require.NotNil(t, h.target.onAttackStart)

	h.target.onAttackStart()
	assert.True(t, newEnv(h).Snap.SeenIncomingAttack)
	h.target.onAttackEnd()
	assert.False(t, newEnv(h).Snap.SeenIncomingAttack)
}

func TestUtilitySelectorTransition(t *testing.T) {
	nodes := func() []graph.Node {
		return []graph.Node{
			root(action("approach", graph.MoveToAttackRange, "pick")),
			&graph.UtilitySelectorNode{BaseNode: graph.BaseNode{NodeID: "pick", NextNodeIDs: []string{"strike", "fallback"}}},
			action("strike", graph.LightAttack),
			cond("fallback", 0, "stance", distance(graph.GreaterEqual, 4)),
			action("stance", graph.CombatStance),
		}
	}

	h := newHarness(t, nodes())
	h.target.pos = combat.Vec2{X: 1.5}
	assert.True(t, h.tick())
	assert.Equal(t, "strike", h.loop.Current().ID())
	assert.Equal(t, []Outcome{OutcomeSwitched}, h.rec.outcomes)

	h = newHarness(t, nodes())
	h.target.pos = combat.Vec2{X: 5}
	assert.True(t, h.tick())
	assert.Equal(t, "stance", h.loop.Current().ID())
	assert.Equal(t, []Outcome{OutcomeNoCandidates}, h.rec.outcomes)
}

func TestConditionToSelectorRespectsExitGuard(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("strike", graph.LightAttack, "go")),
		cond("go", 0, "pick", distance(graph.GreaterEqual, 0)),
		&graph.UtilitySelectorNode{BaseNode: graph.BaseNode{NodeID: "pick", NextNodeIDs: []string{"stance"}}},
		action("stance", graph.CombatStance),
	})
	h.self.state = combat.StateAttacking
	assert.False(t, h.tick())
	assert.Empty(t, h.rec.outcomes)
	assert.Equal(t, 0.0, h.loop.state.Score("pick"))

	h.self.state = combat.StateNormal
	assert.True(t, h.tick())
	assert.Equal(t, "stance", h.loop.Current().ID())
}

func TestConditionToNonActionAborts(t *testing.T) {
	h := newHarness(t, []graph.Node{
		root(action("a", graph.MoveToAttackRange, "c1", "c2")),
		cond("c1", 0, "c2", distance(graph.GreaterEqual, 0)),
		cond("c2", 1, "b", distance(graph.GreaterEqual, 0)),
		action("b", graph.CombatStance),
	})
	assert.False(t, h.tick())
	assert.Equal(t, "a", h.loop.Current().ID())
}

func TestNewLoopInvalidRoot(t *testing.T) {
	idx := graph.NewIndex(&graph.Container{UngroupedNodes: []graph.Node{action("a", graph.CombatStance)}}, logger.NewNoop())
	_, err := NewLoop(newFakeFighter("npc", combat.Vec2{}), TargetFinderFunc(func(combat.Character) combat.Target { return nil }),
		idx, utility.NewStore(nil, logger.NewNoop()), logger.NewNoop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRoot))
	assert.True(t, errors.Is(err, graph.ErrRootNotFound))
}

func TestStartStopsOnCancel(t *testing.T) {
	p := DefaultParams()
	p.TickInterval = time.Millisecond
	h := newHarness(t, []graph.Node{
		root(action("a", graph.MoveToAttackRange, "b")),
		action("b", graph.CombatStance),
	}, WithParams(p))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.loop.Start(ctx) }()

	var seen []string
	for c := range h.loop.Changes() {
		seen = append(seen, c.NodeID)
		if c.NodeID == "b" {
			cancel()
		}
	}
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.False(t, h.loop.Tick(context.Background()))
	h.loop.Close()
}
