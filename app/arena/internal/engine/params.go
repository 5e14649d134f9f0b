package engine

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/utility"
)

// Params 决策循环与动作例程的可调参数
type Params struct {
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`

	// 战斗姿态：防御半径随血量在 [Min, Max] 间插值
	MinStanceRadius    float64       `mapstructure:"min_stance_radius" validate:"gt=0"`
	MaxStanceRadius    float64       `mapstructure:"max_stance_radius" validate:"gtefield=MinStanceRadius"`
	StanceRadiusJitter float64       `mapstructure:"stance_radius_jitter" validate:"gte=0"`
	MinStanceStep      float64       `mapstructure:"min_stance_step" validate:"gte=0"`
	MaxStanceStep      float64       `mapstructure:"max_stance_step" validate:"gtefield=MinStanceStep"`
	StanceWait         time.Duration `mapstructure:"stance_wait" validate:"gte=0"`
	StanceMoveSpeed    float64       `mapstructure:"stance_move_speed" validate:"gt=0"`

	DodgeDistance       float64       `mapstructure:"dodge_distance" validate:"gt=0"`
	MaxDodgeDuration    time.Duration `mapstructure:"max_dodge_duration" validate:"gt=0"`
	DodgeSafetyMultiple float64       `mapstructure:"dodge_safety_multiple" validate:"gte=1"`

	RetreatDistance         float64       `mapstructure:"retreat_distance" validate:"gt=0"`
	MaxRetreatDuration      time.Duration `mapstructure:"max_retreat_duration" validate:"gt=0"`
	HealthRetreatThreshold  float64       `mapstructure:"health_retreat_threshold" validate:"gte=0,lte=1"`
	StaminaRetreatThreshold float64       `mapstructure:"stamina_retreat_threshold" validate:"gte=0,lte=1"`

	// ChangeBuffer Changes() 通道容量，0 表示不创建通道
	ChangeBuffer int `mapstructure:"change_buffer" validate:"gte=0"`
}

// DefaultParams 默认参数
func DefaultParams() *Params {
	return &Params{
		TickInterval:            50 * time.Millisecond,
		MinStanceRadius:         1.5,
		MaxStanceRadius:         3,
		StanceRadiusJitter:      1,
		MinStanceStep:           0.5,
		MaxStanceStep:           1,
		StanceWait:              time.Second,
		StanceMoveSpeed:         1.5,
		DodgeDistance:           10,
		MaxDodgeDuration:        time.Second,
		DodgeSafetyMultiple:     1.2,
		RetreatDistance:         6,
		MaxRetreatDuration:      3 * time.Second,
		HealthRetreatThreshold:  0.15,
		StaminaRetreatThreshold: 0.10,
		ChangeBuffer:            16,
	}
}

// DefensiveRadius 按血量计算防御半径
// 插值系数为 health × MaxStanceRadius，截断到 [0,1]
func (p *Params) DefensiveRadius(health float64) float64 {
	t := utility.Clamp01(health * p.MaxStanceRadius)
	return p.MinStanceRadius + (p.MaxStanceRadius-p.MinStanceRadius)*t
}
