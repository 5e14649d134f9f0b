package combat

import "time"

// Actor 自身与目标共有的只读状态
type Actor interface {
	ID() string
	Position() Vec2
	HealthPercent() float64
	StaminaPercent() float64
	State() State
	IsBlocking() bool
	// HeavyChargePercent 重击蓄力进度 [0,1]，未蓄力为 0
	HeavyChargePercent() float64
}

// Target 战斗目标
type Target interface {
	Actor
	AttackRange() float64
	LightDamage() float64
	HeavyDamage() (lo, hi float64)
	HeavyBlockDrainMultiplier() float64
	// SubscribeAttack 订阅攻击开始/结束，返回取消订阅函数
	SubscribeAttack(onStart, onEnd func()) (cancel func())
}

// Weapon 武器参数
type Weapon struct {
	LightRange       float64 `mapstructure:"light_range" validate:"gt=0"`
	HeavyRange       float64 `mapstructure:"heavy_range" validate:"gt=0"`
	LightStaminaCost float64 `mapstructure:"light_stamina_cost" validate:"gte=0"`
	HeavyStaminaCost float64 `mapstructure:"heavy_stamina_cost" validate:"gte=0"`
}

// Mover 移动能力
// 实现方需容忍不可达位置：记录告警后忽略，不允许 panic
type Mover interface {
	MoveTo(p Vec2)
	// Follow 跟随 target 并保持 standoff 距离
	Follow(target Actor, standoff float64)
	Stop()
	Resume()
	HasArrived() bool
	Velocity() Vec2
}

// Character 决策引擎驱动的角色
type Character interface {
	Target

	StaminaValue() float64
	MaxStamina() float64
	Weapon() (Weapon, bool)
	StaminaRegenBlockedUntil() time.Time
	ExhaustedUntil() time.Time
	LastHitAt() time.Time
	StaminaDrainPerBlock() float64

	LightAttack(target Target)
	StartHeavyAttack(target Target)
	EndHeavyAttack()
	EnterBlockState(source Target)
	ExitBlockState()
	CanExitBlockState() bool
	MinChargeTimeMet() bool

	DefaultMoveSpeed() float64
	SetMoveSpeed(speed float64)
	// SetViewLock 锁定朝向，nil 解除
	SetViewLock(target Actor)
	Mover() Mover
}
