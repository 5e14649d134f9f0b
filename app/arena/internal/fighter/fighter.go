package fighter

import (
	"sync"
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/pkg/logger"
)

// Option 角色选项
type Option func(*Fighter)

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(f *Fighter) { f.clock = now }
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(f *Fighter) { f.logger = l }
}

// Unarmed 不持武器
func Unarmed() Option {
	return func(f *Fighter) { f.armed = false }
}

type attackSub struct {
	onStart func()
	onEnd   func()
}

// swing 已出手的攻击，在 hitAt 结算命中，endAt 结束
type swing struct {
	heavy  bool
	target combat.Target
	damage float64
	reach  float64
	hitAt  time.Time
	endAt  time.Time
	landed bool
}

// Fighter 场地中的角色，所有方法可并发调用
type Fighter struct {
	id        string
	stats     Stats
	bounds    Bounds
	tolerance float64
	armed     bool
	clock     func() time.Time
	logger    logger.Logger
	mv        *mover

	mu       sync.Mutex
	pos      combat.Vec2
	health   float64
	stamina  float64
	state    combat.State
	speed    float64
	viewLock combat.Actor

	// 移动
	dest     combat.Vec2
	hasDest  bool
	follow   combat.Actor
	standoff float64
	stopped  bool
	velocity combat.Vec2

	// 攻击与格挡
	swing       *swing
	charging    bool
	chargeStart time.Time
	chargeOn    combat.Target
	blockStart  time.Time
	stunUntil   time.Time

	regenBlockedUntil time.Time
	exhaustedUntil    time.Time
	lastHitAt         time.Time

	subs    map[uint64]attackSub
	nextSub uint64
}

var (
	_ combat.Character = (*Fighter)(nil)
	_ combat.Target    = (*Fighter)(nil)
)

// New 以满血满体力创建角色
func New(id string, pos combat.Vec2, cfg ArenaConfig, opts ...Option) *Fighter {
	f := &Fighter{
		id:        id,
		stats:     cfg.Stats,
		bounds:    cfg.Bounds,
		tolerance: cfg.ArriveTolerance,
		armed:     true,
		clock:     time.Now,
		logger:    logger.NewNoop(),
		pos:       cfg.Bounds.Clamp(pos),
		health:    cfg.Stats.MaxHealth,
		stamina:   cfg.Stats.MaxStamina,
		speed:     cfg.Stats.MoveSpeed,
		subs:      make(map[uint64]attackSub),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.Named("fighter").WithFields("fighter_id", id)
	f.mv = &mover{f: f}
	return f
}

func (f *Fighter) ID() string { return f.id }

func (f *Fighter) Position() combat.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *Fighter) HealthPercent() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health / f.stats.MaxHealth
}

func (f *Fighter) StaminaPercent() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stamina / f.stats.MaxStamina
}

func (f *Fighter) State() combat.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Fighter) IsBlocking() bool {
	return f.State() == combat.StateBlocking
}

// Alive 是否存活
func (f *Fighter) Alive() bool {
	return f.State() != combat.StateDeath
}

// HeavyChargePercent 按最大蓄力时间计算
func (f *Fighter) HeavyChargePercent() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chargePercentLocked(f.clock())
}

func (f *Fighter) chargePercentLocked(now time.Time) float64 {
	if !f.charging {
		return 0
	}
	if f.stats.MaxChargeTime <= 0 {
		return 1
	}
	p := float64(now.Sub(f.chargeStart)) / float64(f.stats.MaxChargeTime)
	return min(max(p, 0), 1)
}

// AttackRange 武器的最大攻击距离，未持武器为 0
func (f *Fighter) AttackRange() float64 {
	if !f.armed {
		return 0
	}
	return max(f.stats.Weapon.LightRange, f.stats.Weapon.HeavyRange)
}

func (f *Fighter) LightDamage() float64 { return f.stats.LightDamage }

func (f *Fighter) HeavyDamage() (lo, hi float64) {
	return f.stats.HeavyMinDamage, f.stats.HeavyMaxDamage
}

func (f *Fighter) HeavyBlockDrainMultiplier() float64 { return f.stats.HeavyBlockDrainMultiplier }

func (f *Fighter) StaminaDrainPerBlock() float64 { return f.stats.StaminaDrainPerBlock }

func (f *Fighter) MaxStamina() float64 { return f.stats.MaxStamina }

func (f *Fighter) DefaultMoveSpeed() float64 { return f.stats.MoveSpeed }

func (f *Fighter) Mover() combat.Mover { return f.mv }

func (f *Fighter) StaminaValue() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stamina
}

func (f *Fighter) Weapon() (combat.Weapon, bool) {
	if !f.armed {
		return combat.Weapon{}, false
	}
	return f.stats.Weapon, true
}

func (f *Fighter) StaminaRegenBlockedUntil() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regenBlockedUntil
}

func (f *Fighter) ExhaustedUntil() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhaustedUntil
}

func (f *Fighter) LastHitAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHitAt
}

func (f *Fighter) SetMoveSpeed(speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speed = max(0, speed)
}

func (f *Fighter) SetViewLock(target combat.Actor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewLock = target
}

// ViewLock 当前锁定的朝向目标
func (f *Fighter) ViewLock() combat.Actor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLock
}

// SubscribeAttack 攻击开始/结束回调在角色锁外执行
func (f *Fighter) SubscribeAttack(onStart, onEnd func()) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = attackSub{onStart: onStart, onEnd: onEnd}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *Fighter) subscribersLocked() []attackSub {
	subs := make([]attackSub, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	return subs
}

func notifyStart(subs []attackSub) {
	for _, s := range subs {
		if s.onStart != nil {
			s.onStart()
		}
	}
}

func notifyEnd(subs []attackSub) {
	for _, s := range subs {
		if s.onEnd != nil {
			s.onEnd()
		}
	}
}

// spendLocked 扣除体力，耗尽时进入力竭
func (f *Fighter) spendLocked(cost float64, now time.Time) {
	f.stamina = max(0, f.stamina-cost)
	f.regenBlockedUntil = now.Add(f.stats.RegenDelay)
	if f.stamina == 0 {
		f.exhaustedUntil = now.Add(f.stats.ExhaustDuration)
	}
}

// LightAttack 体力不足或不能行动时忽略
func (f *Fighter) LightAttack(target combat.Target) {
	notifyStart(f.startLight(target, f.clock()))
}

func (f *Fighter) startLight(target combat.Target, now time.Time) []attackSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != combat.StateNormal {
		f.logger.Debug("light attack ignored", "state", f.state.String())
		return nil
	}
	if !f.armed {
		f.logger.Warn("light attack without weapon")
		return nil
	}
	cost := f.stats.Weapon.LightStaminaCost
	if f.stamina < cost {
		f.logger.Warn("not enough stamina for light attack", "stamina", f.stamina, "cost", cost)
		return nil
	}
	f.spendLocked(cost, now)
	f.state = combat.StateAttacking
	f.swing = &swing{
		target: target,
		damage: f.stats.LightDamage,
		reach:  f.stats.Weapon.LightRange,
		hitAt:  now.Add(f.stats.LightAttackDuration / 2),
		endAt:  now.Add(f.stats.LightAttackDuration),
	}
	return f.subscribersLocked()
}

// StartHeavyAttack 开始蓄力，蓄力期间处于攻击状态
func (f *Fighter) StartHeavyAttack(target combat.Target) {
	notifyStart(f.startCharge(target, f.clock()))
}

func (f *Fighter) startCharge(target combat.Target, now time.Time) []attackSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != combat.StateNormal {
		f.logger.Debug("heavy attack ignored", "state", f.state.String())
		return nil
	}
	if !f.armed {
		f.logger.Warn("heavy attack without weapon")
		return nil
	}
	if f.stamina <= 0 {
		f.logger.Warn("no stamina to charge heavy attack")
		return nil
	}
	f.state = combat.StateAttacking
	f.charging = true
	f.chargeStart = now
	f.chargeOn = target
	return f.subscribersLocked()
}

// EndHeavyAttack 释放蓄力，伤害按蓄力进度在最小与最大伤害间插值
func (f *Fighter) EndHeavyAttack() {
	now := f.clock()
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.charging {
		f.logger.Warn("release heavy attack without charge")
		return
	}
	charge := f.chargePercentLocked(now)
	f.charging = false
	f.spendLocked(f.stats.Weapon.HeavyStaminaCost, now)
	f.swing = &swing{
		heavy:  true,
		target: f.chargeOn,
		damage: f.stats.HeavyMinDamage + (f.stats.HeavyMaxDamage-f.stats.HeavyMinDamage)*charge,
		reach:  f.stats.Weapon.HeavyRange,
		hitAt:  now.Add(f.stats.HeavyAttackDuration / 2),
		endAt:  now.Add(f.stats.HeavyAttackDuration),
	}
	f.chargeOn = nil
}

// EnterBlockState 力竭或不能行动时忽略
func (f *Fighter) EnterBlockState(source combat.Target) {
	now := f.clock()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != combat.StateNormal {
		f.logger.Debug("block ignored", "state", f.state.String())
		return
	}
	if now.Before(f.exhaustedUntil) {
		f.logger.Debug("block ignored while exhausted")
		return
	}
	f.state = combat.StateBlocking
	f.blockStart = now
	if source != nil {
		f.viewLock = source
	}
}

func (f *Fighter) ExitBlockState() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == combat.StateBlocking {
		f.state = combat.StateNormal
	}
}

// CanExitBlockState 格挡至少持续 MinBlockTime
func (f *Fighter) CanExitBlockState() bool {
	now := f.clock()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != combat.StateBlocking || now.Sub(f.blockStart) >= f.stats.MinBlockTime
}

func (f *Fighter) MinChargeTimeMet() bool {
	now := f.clock()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.charging && now.Sub(f.chargeStart) >= f.stats.MinChargeTime
}
