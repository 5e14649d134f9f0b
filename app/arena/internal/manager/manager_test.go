package manager

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/engine"
	"github.com/lk2023060901/combatai/app/arena/internal/fighter"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/idgen"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/lk2023060901/combatai/pkg/metrics/system"
	"github.com/lk2023060901/combatai/pkg/util/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type countingRecorder struct {
	engine.NopReporter
	started atomic.Int32
	stopped atomic.Int32
	changes atomic.Int32
	alive   atomic.Int32
	samples atomic.Int32
}

func (r *countingRecorder) OnActionChanged(engine.ActionChange) { r.changes.Inc() }
func (r *countingRecorder) LoopStarted()                        { r.started.Inc() }
func (r *countingRecorder) LoopStopped()                        { r.stopped.Inc() }
func (r *countingRecorder) SetAlive(n int)                      { r.alive.Store(int32(n)) }
func (r *countingRecorder) ObserveProcess(system.Stats)         { r.samples.Inc() }

// flakySampler 每隔一次返回错误
type flakySampler struct{ calls atomic.Int32 }

func (s *flakySampler) Sample(context.Context) (system.Stats, error) {
	if s.calls.Inc()%2 == 0 {
		return system.Stats{Goroutines: 1}, errors.New("sample failed")
	}
	return system.Stats{Goroutines: 1}, nil
}

// duelGraph 接近到轻击距离后出手，拉开后重新接近
func duelGraph() *graph.Index {
	approach := &graph.ActionNode{
		BaseNode: graph.BaseNode{NodeID: "approach", NextNodeIDs: []string{"in_range"}, IsRootNode: true},
		Kind:     graph.MoveToAttackRange,
	}
	inRange := &graph.ConditionNode{
		BaseNode: graph.BaseNode{NodeID: "in_range", NextNodeIDs: []string{"strike"}},
		Entries:  []graph.ConditionEntry{{Kind: graph.CheckDistance, Operator: graph.LessEqual, Value: 1.5}},
	}
	inRange.Resync()
	strike := &graph.ActionNode{
		BaseNode: graph.BaseNode{NodeID: "strike", NextNodeIDs: []string{"too_far"}},
		Kind:     graph.LightAttack,
	}
	tooFar := &graph.ConditionNode{
		BaseNode: graph.BaseNode{NodeID: "too_far", NextNodeIDs: []string{"approach"}},
		Entries:  []graph.ConditionEntry{{Kind: graph.CheckDistance, Operator: graph.Greater, Value: 2}},
	}
	tooFar.Resync()

	c := &graph.Container{Name: "duel", UngroupedNodes: []graph.Node{approach, inRange, strike, tooFar}}
	return graph.NewIndex(c, logger.NewNoop())
}

func newManager(t *testing.T, cfg Config, idx *graph.Index, opts ...Option) (*ArenaManager, *fighter.World, *countingRecorder) {
	t.Helper()
	world := fighter.NewWorld(fighter.DefaultArenaConfig(), logger.NewNoop())
	rec := &countingRecorder{}
	m := New(cfg, world, idx, utility.NewStore(nil, logger.NewNoop()), engine.DefaultParams(), logger.NewNoop(), append([]Option{WithRecorder(rec)}, opts...)...)
	t.Cleanup(func() { _ = m.Close() })
	return m, world, rec
}

func TestSpawnAndStop(t *testing.T) {
	m, world, rec := newManager(t, DefaultConfig(), duelGraph())
	f, err := world.Spawn("npc", combat.Vec2{})
	require.NoError(t, err)

	id, err := m.Spawn(context.Background(), f)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Count())
	assert.EqualValues(t, 1, m.Spawned())

	loop, ok := m.Loop(id)
	require.True(t, ok)
	assert.Equal(t, id, loop.ID())
	assert.Eventually(t, func() bool { return rec.started.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop(id))
	assert.Zero(t, m.Count())
	assert.EqualValues(t, 1, rec.stopped.Load())
	assert.ErrorIs(t, m.Stop(id), ErrLoopNotFound)
}

func TestSpawnInvalidRoot(t *testing.T) {
	idx := graph.NewIndex(&graph.Container{Name: "empty"}, logger.NewNoop())
	m, world, _ := newManager(t, DefaultConfig(), idx)
	f, err := world.Spawn("npc", combat.Vec2{})
	require.NoError(t, err)

	_, err = m.Spawn(context.Background(), f)
	assert.True(t, errors.Is(err, engine.ErrInvalidRoot))
	assert.Zero(t, m.Count())
}

func TestSpawnPoolFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoolSize = 1
	m, world, _ := newManager(t, cfg, duelGraph())
	a, err := world.Spawn("a", combat.Vec2{})
	require.NoError(t, err)
	b, err := world.Spawn("b", combat.Vec2{X: 1})
	require.NoError(t, err)

	_, err = m.Spawn(context.Background(), a)
	require.NoError(t, err)
	_, err = m.Spawn(context.Background(), b)
	assert.ErrorIs(t, err, conc.ErrPoolFull)
	assert.Equal(t, 1, m.Count())
}

func TestCloseRejectsSpawn(t *testing.T) {
	m, world, _ := newManager(t, DefaultConfig(), duelGraph())
	f, err := world.Spawn("npc", combat.Vec2{})
	require.NoError(t, err)
	_, err = m.Spawn(context.Background(), f)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Zero(t, m.Count())
	_, err = m.Spawn(context.Background(), f)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestServeDuel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReportInterval = 20 * time.Millisecond
	cfg.Fighters = []SpawnConfig{
		{ID: "red", Position: combat.Vec2{X: -1}},
		{ID: "blue", Position: combat.Vec2{X: 1}},
	}
	ids, err := idgen.NewSonyflake(cfg.MachineID)
	require.NoError(t, err)
	m, world, rec := newManager(t, cfg, duelGraph(), WithSampler(&flakySampler{}), WithMatchIDs(ids))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	assert.Eventually(t, func() bool { return m.Count() == 2 }, time.Second, 10*time.Millisecond)
	assert.NotZero(t, m.MatchID())
	assert.Eventually(t, func() bool {
		for _, f := range world.Fighters() {
			if f.HealthPercent() < 1 {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond, "someone lands a hit")
	assert.Positive(t, rec.changes.Load())
	assert.Eventually(t, func() bool { return rec.alive.Load() > 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return rec.samples.Load() >= 2 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Zero(t, m.Count())
	assert.Equal(t, rec.started.Load(), rec.stopped.Load())
}

func TestServePopulateFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fighters = []SpawnConfig{{ID: "twin"}, {ID: "twin", Position: combat.Vec2{X: 1}}}
	m, _, _ := newManager(t, cfg, duelGraph())

	err := m.Serve(context.Background())
	assert.ErrorIs(t, err, fighter.ErrDuplicateFighter)
	assert.Zero(t, m.Count())
}
