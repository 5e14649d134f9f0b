package combat

import "time"

const (
	// IdealLightRangeFactor 理想轻击距离 = 轻击距离 × 0.8
	IdealLightRangeFactor = 0.8
	// NeverHitSeconds 从未受击时使用的间隔
	NeverHitSeconds = 3600.0
)

// Snapshot 单次决策使用的只读战斗数据
// 每帧构造一次并按值传递，不跨帧复用
type Snapshot struct {
	Now time.Time

	// 自身
	SelfID                   string
	Position                 Vec2
	State                    State
	StaminaValue             float64
	StaminaPercent           float64
	MaxStamina               float64
	HealthPercent            float64
	Blocking                 bool
	StaminaRegenBlockedUntil time.Time
	ExhaustedUntil           time.Time
	TimeSinceLastHit         float64
	HeavyChargePercent       float64
	HeavySwingStaminaCost    float64
	StaminaDrainPerBlock     float64
	MinChargeTimeMet         bool

	// 武器
	HasWeapon        bool
	LightRange       float64
	HeavyRange       float64
	IdealLightRange  float64
	LightStaminaCost float64

	// 目标
	HasTarget                       bool
	TargetID                        string
	TargetPosition                  Vec2
	Distance                        float64
	TargetState                     State
	TargetStaminaPercent            float64
	TargetHealthPercent             float64
	TargetBlocking                  bool
	TargetAttackRange               float64
	TargetHeavyChargePercent        float64
	TargetLightDamage               float64
	TargetMinHeavyDamage            float64
	TargetMaxHeavyDamage            float64
	TargetHeavyBlockDrainMultiplier float64

	// 派生
	SeenIncomingAttack bool
	IncomingDamage     float64
	DefensiveRadius    float64
}

// TargetAttacking 目标是否处于攻击中
func (s Snapshot) TargetAttacking() bool {
	return s.TargetState == StateAttacking
}

// Capture 读取 self 与 target 的当前状态；target 为 nil 时只填充自身数据
func Capture(self Character, target Target, seenIncoming bool, defensiveRadius float64, now time.Time) Snapshot {
	s := Snapshot{
		Now:                      now,
		SelfID:                   self.ID(),
		Position:                 self.Position(),
		State:                    self.State(),
		StaminaValue:             self.StaminaValue(),
		StaminaPercent:           self.StaminaPercent(),
		MaxStamina:               self.MaxStamina(),
		HealthPercent:            self.HealthPercent(),
		Blocking:                 self.IsBlocking(),
		StaminaRegenBlockedUntil: self.StaminaRegenBlockedUntil(),
		ExhaustedUntil:           self.ExhaustedUntil(),
		TimeSinceLastHit:         NeverHitSeconds,
		HeavyChargePercent:       self.HeavyChargePercent(),
		StaminaDrainPerBlock:     self.StaminaDrainPerBlock(),
		MinChargeTimeMet:         self.MinChargeTimeMet(),
		DefensiveRadius:          defensiveRadius,
	}
	if hit := self.LastHitAt(); !hit.IsZero() {
		s.TimeSinceLastHit = now.Sub(hit).Seconds()
	}

	if w, ok := self.Weapon(); ok {
		s.HasWeapon = true
		s.LightRange = w.LightRange
		s.HeavyRange = w.HeavyRange
		s.IdealLightRange = w.LightRange * IdealLightRangeFactor
		s.LightStaminaCost = w.LightStaminaCost
		s.HeavySwingStaminaCost = w.HeavyStaminaCost
	}

	if target == nil {
		return s
	}

	s.HasTarget = true
	s.TargetID = target.ID()
	s.TargetPosition = target.Position()
	s.Distance = s.Position.Dist(s.TargetPosition)
	s.TargetState = target.State()
	s.TargetStaminaPercent = target.StaminaPercent()
	s.TargetHealthPercent = target.HealthPercent()
	s.TargetBlocking = target.IsBlocking()
	s.TargetAttackRange = target.AttackRange()
	s.TargetHeavyChargePercent = target.HeavyChargePercent()
	s.TargetLightDamage = target.LightDamage()
	s.TargetMinHeavyDamage, s.TargetMaxHeavyDamage = target.HeavyDamage()
	s.TargetHeavyBlockDrainMultiplier = target.HeavyBlockDrainMultiplier()

	s.SeenIncomingAttack = seenIncoming
	switch {
	case !seenIncoming:
		s.IncomingDamage = 0
	case s.TargetHeavyChargePercent > 0:
		s.IncomingDamage = s.TargetMinHeavyDamage
	default:
		s.IncomingDamage = s.TargetLightDamage
	}
	return s
}
