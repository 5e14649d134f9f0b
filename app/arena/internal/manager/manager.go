package manager

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/combatai/app/arena/internal/engine"
	"github.com/lk2023060901/combatai/app/arena/internal/fighter"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/app"
	"github.com/lk2023060901/combatai/pkg/idgen"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/lk2023060901/combatai/pkg/metrics/system"
	"github.com/lk2023060901/combatai/pkg/util/conc"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

var (
	ErrLoopNotFound = errors.New("manager: loop not found")
	ErrClosed       = errors.New("manager: closed")
)

// Recorder 管理器的指标出口
type Recorder interface {
	engine.Reporter
	engine.Observer
	LoopStarted()
	LoopStopped()
	SetAlive(n int)
	ObserveProcess(s system.Stats)
}

// Sampler 进程资源采样
type Sampler interface {
	Sample(ctx context.Context) (system.Stats, error)
}

type nopRecorder struct {
	engine.NopReporter
}

func (nopRecorder) OnActionChanged(engine.ActionChange) {}
func (nopRecorder) LoopStarted()                        {}
func (nopRecorder) LoopStopped()                        {}
func (nopRecorder) SetAlive(int)                        {}
func (nopRecorder) ObserveProcess(system.Stats)         {}

// Option 管理器选项
type Option func(*ArenaManager)

// WithRecorder 设置指标出口
func WithRecorder(r Recorder) Option {
	return func(m *ArenaManager) { m.recorder = r }
}

// WithSampler 在每个上报周期采样进程资源
func WithSampler(s Sampler) Option {
	return func(m *ArenaManager) { m.sampler = s }
}

// WithMatchIDs 每次 Serve 从 g 取对局 id
func WithMatchIDs(g idgen.Generator) Option {
	return func(m *ArenaManager) { m.matchIDs = g }
}

// WithLoopOptions 追加每个决策循环的选项
func WithLoopOptions(opts ...engine.LoopOption) Option {
	return func(m *ArenaManager) { m.loopOpts = append(m.loopOpts, opts...) }
}

type running struct {
	loop   *engine.Loop
	cancel context.CancelFunc
	done   *conc.Future[struct{}]
}

// ArenaManager 在协程池上运行场地中每个 NPC 的决策循环
type ArenaManager struct {
	cfg      Config
	world    *fighter.World
	index    *graph.Index
	weights  utility.WeightsSource
	params   *engine.Params
	recorder Recorder
	sampler  Sampler
	matchIDs idgen.Generator
	loopOpts []engine.LoopOption
	pool     *conc.Pool[struct{}]
	base     logger.Logger
	logger   logger.Logger

	mu      sync.Mutex
	loops   map[string]*running
	spawned atomic.Int64
	closed  atomic.Bool
	match   atomic.Uint64
}

var _ app.Server = (*ArenaManager)(nil)

func New(cfg Config, world *fighter.World, idx *graph.Index, weights utility.WeightsSource, params *engine.Params, l logger.Logger, opts ...Option) *ArenaManager {
	m := &ArenaManager{
		cfg:      cfg,
		world:    world,
		index:    idx,
		weights:  weights,
		params:   params,
		recorder: nopRecorder{},
		base:     l,
		logger:   l.Named("arena.manager"),
		loops:    make(map[string]*running),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.pool = conc.NewPool[struct{}](cfg.PoolSize,
		conc.WithNonblocking(true),
		conc.WithPanicHandler(func(p any) {
			m.logger.Error("decision loop panicked", "panic", p)
		}),
	)
	return m
}

func (m *ArenaManager) Name() string { return "arena" }

// Spawn 为 self 创建决策循环并提交到协程池，返回循环 id
func (m *ArenaManager) Spawn(ctx context.Context, self *fighter.Fighter) (string, error) {
	if m.closed.Load() {
		return "", ErrClosed
	}

	id := uuid.NewString()
	opts := append([]engine.LoopOption{
		engine.WithID(id),
		engine.WithParams(m.params),
		engine.WithReporter(m.recorder),
		engine.WithObserver(m.recorder),
	}, m.loopOpts...)
	loop, err := engine.NewLoop(self, m.world, m.index, m.weights, m.base, opts...)
	if err != nil {
		return "", errors.Wrapf(err, "manager: spawn loop for %s", self.ID())
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := m.pool.Submit(func() (struct{}, error) {
		m.recorder.LoopStarted()
		defer m.recorder.LoopStopped()
		return struct{}{}, loop.Start(loopCtx)
	})
	if done.Done() {
		if err := done.Err(); err != nil {
			cancel()
			loop.Close()
			return "", errors.Wrapf(err, "manager: submit loop for %s", self.ID())
		}
	}

	m.mu.Lock()
	m.loops[id] = &running{loop: loop, cancel: cancel, done: done}
	m.mu.Unlock()

	m.spawned.Inc()
	m.logger.Info("decision loop spawned", "loop_id", id, "fighter_id", self.ID())
	return id, nil
}

func (m *ArenaManager) remove(id string) *running {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loops[id]
	if !ok {
		return nil
	}
	delete(m.loops, id)
	return r
}

// Loop 按 id 查找运行中的循环
func (m *ArenaManager) Loop(id string) (*engine.Loop, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loops[id]
	if !ok {
		return nil, false
	}
	return r.loop, true
}

// Stop 停止循环并等待其退出
func (m *ArenaManager) Stop(id string) error {
	r := m.remove(id)
	if r == nil {
		return errors.Wrapf(ErrLoopNotFound, "id %s", id)
	}
	r.cancel()
	if err := r.done.Err(); err != nil {
		return errors.Wrapf(err, "manager: loop %s", id)
	}
	m.logger.Info("decision loop stopped", "loop_id", id)
	return nil
}

// StopAll 停止全部循环，返回合并后的错误
func (m *ArenaManager) StopAll() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.loops))
	for id := range m.loops {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Stop(id); err != nil && !errors.Is(err, ErrLoopNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Count 运行中的循环数
func (m *ArenaManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loops)
}

// Spawned 累计创建的循环数
func (m *ArenaManager) Spawned() int64 {
	return m.spawned.Load()
}

// Populate 按配置在场地中创建角色并启动决策循环
func (m *ArenaManager) Populate(ctx context.Context) error {
	for _, s := range m.cfg.Fighters {
		var opts []fighter.Option
		if s.Unarmed {
			opts = append(opts, fighter.Unarmed())
		}
		f, err := m.world.Spawn(s.ID, s.Position, opts...)
		if err != nil {
			return err
		}
		if _, err := m.Spawn(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Serve 运行场地与全部决策循环，阻塞到 ctx 结束
func (m *ArenaManager) Serve(ctx context.Context) error {
	if m.matchIDs != nil {
		id, err := m.matchIDs.NextID()
		if err != nil {
			return err
		}
		m.match.Store(id)
		m.logger.Info("match started", "match_id", id, "fighters", len(m.cfg.Fighters))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.world.Run(gctx) })
	g.Go(func() error { return m.report(gctx) })

	if err := m.Populate(gctx); err != nil {
		m.logger.Error("populate arena failed", "error", err)
		g.Go(func() error { return err })
	}

	<-gctx.Done()
	stopErr := m.StopAll()
	if err := g.Wait(); err != nil {
		return err
	}
	return stopErr
}

func (m *ArenaManager) report(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReportInterval)
	defer ticker.Stop()

	finished := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			alive := m.world.Alive()
			m.recorder.SetAlive(alive)
			m.sample(ctx)
			if alive <= 1 && !finished && len(m.world.Fighters()) > 1 {
				finished = true
				m.logger.Info("duel finished", "match_id", m.match.Load(), "alive", alive)
			}
		}
	}
}

// MatchID 当前对局 id，未配置生成器时为 0
func (m *ArenaManager) MatchID() uint64 { return m.match.Load() }

func (m *ArenaManager) sample(ctx context.Context) {
	if m.sampler == nil {
		return
	}
	st, err := m.sampler.Sample(ctx)
	if err != nil {
		m.logger.Debug("process sample incomplete", "error", err)
	}
	m.recorder.ObserveProcess(st)
}

// Close 停止全部循环并释放协程池
func (m *ArenaManager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := m.StopAll()
	m.pool.Release()
	return err
}
