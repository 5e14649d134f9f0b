package fighter

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

// Stats 角色数值
type Stats struct {
	MaxHealth  float64 `mapstructure:"max_health" validate:"gt=0"`
	MaxStamina float64 `mapstructure:"max_stamina" validate:"gt=0"`
	MoveSpeed  float64 `mapstructure:"move_speed" validate:"gt=0"`

	// StaminaRegen 每秒恢复量
	StaminaRegen    float64       `mapstructure:"stamina_regen" validate:"gte=0"`
	RegenDelay      time.Duration `mapstructure:"regen_delay" validate:"gte=0"`
	ExhaustDuration time.Duration `mapstructure:"exhaust_duration" validate:"gte=0"`

	LightDamage               float64 `mapstructure:"light_damage" validate:"gte=0"`
	HeavyMinDamage            float64 `mapstructure:"heavy_min_damage" validate:"gte=0"`
	HeavyMaxDamage            float64 `mapstructure:"heavy_max_damage" validate:"gtefield=HeavyMinDamage"`
	HeavyBlockDrainMultiplier float64 `mapstructure:"heavy_block_drain_multiplier" validate:"gte=0"`

	// StaminaDrainPerBlock 每次格挡消耗的体力占最大体力的比例
	StaminaDrainPerBlock float64 `mapstructure:"stamina_drain_per_block" validate:"gte=0,lte=1"`

	LightAttackDuration time.Duration `mapstructure:"light_attack_duration" validate:"gt=0"`
	HeavyAttackDuration time.Duration `mapstructure:"heavy_attack_duration" validate:"gt=0"`
	MinChargeTime       time.Duration `mapstructure:"min_charge_time" validate:"gte=0"`
	MaxChargeTime       time.Duration `mapstructure:"max_charge_time" validate:"gtefield=MinChargeTime"`
	MinBlockTime        time.Duration `mapstructure:"min_block_time" validate:"gte=0"`
	StunDuration        time.Duration `mapstructure:"stun_duration" validate:"gte=0"`

	Weapon combat.Weapon `mapstructure:"weapon"`
}

// DefaultStats 默认数值
func DefaultStats() Stats {
	return Stats{
		MaxHealth:                 100,
		MaxStamina:                100,
		MoveSpeed:                 3,
		StaminaRegen:              15,
		RegenDelay:                time.Second,
		ExhaustDuration:           2 * time.Second,
		LightDamage:               10,
		HeavyMinDamage:            20,
		HeavyMaxDamage:            35,
		HeavyBlockDrainMultiplier: 1.5,
		StaminaDrainPerBlock:      0.1,
		LightAttackDuration:       400 * time.Millisecond,
		HeavyAttackDuration:       600 * time.Millisecond,
		MinChargeTime:             400 * time.Millisecond,
		MaxChargeTime:             1200 * time.Millisecond,
		MinBlockTime:              300 * time.Millisecond,
		StunDuration:              300 * time.Millisecond,
		Weapon: combat.Weapon{
			LightRange:       1.8,
			HeavyRange:       2.4,
			LightStaminaCost: 12,
			HeavyStaminaCost: 30,
		},
	}
}

// Bounds 轴对齐的场地范围
type Bounds struct {
	Min combat.Vec2 `mapstructure:"min"`
	Max combat.Vec2 `mapstructure:"max"`
}

// Contains 是否在场地内（含边界）
func (b Bounds) Contains(p combat.Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Clamp 截断到场地内
func (b Bounds) Clamp(p combat.Vec2) combat.Vec2 {
	return combat.Vec2{
		X: min(max(p.X, b.Min.X), b.Max.X),
		Y: min(max(p.Y, b.Min.Y), b.Max.Y),
	}
}

// ArenaConfig 场地配置
type ArenaConfig struct {
	Bounds       Bounds        `mapstructure:"bounds"`
	StepInterval time.Duration `mapstructure:"step_interval" validate:"gt=0"`

	// ArriveTolerance 到达判定距离
	ArriveTolerance float64 `mapstructure:"arrive_tolerance" validate:"gt=0"`
	Stats           Stats   `mapstructure:"stats"`
}

// DefaultArenaConfig 20×20 场地
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		Bounds:          Bounds{Min: combat.Vec2{X: -10, Y: -10}, Max: combat.Vec2{X: 10, Y: 10}},
		StepInterval:    20 * time.Millisecond,
		ArriveTolerance: 0.05,
		Stats:           DefaultStats(),
	}
}
