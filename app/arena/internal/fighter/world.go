package fighter

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// ErrDuplicateFighter 场地中已有同 id 的角色
var ErrDuplicateFighter = errors.New("fighter: duplicate id")

// WorldOption 场地选项
type WorldOption func(*World)

// WithWorldClock 注入时钟，同时作为新角色的时钟
func WithWorldClock(now func() time.Time) WorldOption {
	return func(w *World) { w.clock = now }
}

// World 场地：推进角色计时器、结算命中、执行移动
type World struct {
	cfg    ArenaConfig
	clock  func() time.Time
	base   logger.Logger
	logger logger.Logger

	mu       sync.RWMutex
	fighters map[string]*Fighter
	last     time.Time
}

func NewWorld(cfg ArenaConfig, l logger.Logger, opts ...WorldOption) *World {
	w := &World{
		cfg:      cfg,
		clock:    time.Now,
		base:     l,
		logger:   l.Named("arena.world"),
		fighters: make(map[string]*Fighter),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Spawn 在 pos 创建角色并加入场地
func (w *World) Spawn(id string, pos combat.Vec2, opts ...Option) (*Fighter, error) {
	opts = append([]Option{WithClock(w.clock), WithLogger(w.base)}, opts...)
	f := New(id, pos, w.cfg, opts...)
	if err := w.Add(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (w *World) Add(f *Fighter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.fighters[f.ID()]; ok {
		return errors.Wrapf(ErrDuplicateFighter, "id %s", f.ID())
	}
	w.fighters[f.ID()] = f
	return nil
}

func (w *World) Remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.fighters, id)
}

func (w *World) Fighter(id string) (*Fighter, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	f, ok := w.fighters[id]
	return f, ok
}

// Fighters 按 id 排序
func (w *World) Fighters() []*Fighter {
	w.mu.RLock()
	list := make([]*Fighter, 0, len(w.fighters))
	for _, f := range w.fighters {
		list = append(list, f)
	}
	w.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Fighter) int { return strings.Compare(a.ID(), b.ID()) })
	return list
}

// Alive 存活角色数
func (w *World) Alive() int {
	n := 0
	for _, f := range w.Fighters() {
		if f.Alive() {
			n++
		}
	}
	return n
}

// FindTarget 最近的存活对手，没有时返回 nil
func (w *World) FindTarget(self combat.Character) combat.Target {
	pos := self.Position()
	var (
		best *Fighter
		dist float64
	)
	for _, f := range w.Fighters() {
		if f.ID() == self.ID() || !f.Alive() {
			continue
		}
		if d := pos.Dist(f.Position()); best == nil || d < dist {
			best, dist = f, d
		}
	}
	if best == nil {
		return nil
	}
	return best
}

// Step 推进到 now：先推进全部角色的计时器，再结算命中，最后移动
func (w *World) Step(now time.Time) {
	w.mu.Lock()
	dt := w.cfg.StepInterval
	if !w.last.IsZero() {
		dt = max(0, now.Sub(w.last))
	}
	w.last = now
	w.mu.Unlock()

	fighters := w.Fighters()
	var hits []*hit
	for _, f := range fighters {
		if h := f.advance(now, dt); h != nil {
			hits = append(hits, h)
		}
	}

	for _, h := range hits {
		res := h.target.takeHit(h, now)
		switch res {
		case hitKilled:
			w.logger.Info("fighter killed", "attacker", h.attacker, "target", h.target.ID(), "damage", h.damage)
		case hitMissed:
		default:
			w.logger.Debug("hit resolved",
				"attacker", h.attacker,
				"target", h.target.ID(),
				"result", res.String(),
				"heavy", h.heavy,
				"damage", h.damage,
			)
		}
	}

	for _, f := range fighters {
		f.move(dt)
	}
}

// Run 按 StepInterval 推进场地直到 ctx 结束
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.StepInterval)
	defer ticker.Stop()

	w.logger.Info("arena started", "fighters", len(w.Fighters()))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("arena stopped", "alive", w.Alive())
			return nil
		case <-ticker.C:
			w.Step(w.clock())
		}
	}
}
