package utility

import (
	"math"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/logger"
)

const (
	// RecentHitWindow 战斗姿态中"刚被击中"的衰减时长（秒）
	RecentHitWindow = 3.0
	// BlockRangeMargin 超出目标攻击范围该倍数后不再格挡
	BlockRangeMargin = 1.1
)

// Scorer 每种动作一个纯函数评分，结果落在 [0,1]
type Scorer struct {
	weights WeightsSource
	logger  logger.Logger
}

func NewScorer(src WeightsSource, l logger.Logger) *Scorer {
	return &Scorer{weights: src, logger: l.Named("scorer")}
}

func (s *Scorer) finish(kind graph.ActionKind, score float64) float64 {
	if math.IsNaN(score) {
		s.logger.Warn("score is NaN", "kind", kind)
		return 0
	}
	if !WithinBounds(score) {
		s.logger.Debug("score out of bounds, clamped", "kind", kind, "score", score)
		return Clamp01(score)
	}
	return score
}

// resourceDiff (a-b+1)/2 截断到 [0,1]
func resourceDiff(a, b float64) float64 {
	return Clamp01((a - b + 1) * 0.5)
}

// MoveToStanceRadius 离防御半径越远越高
func (s *Scorer) MoveToStanceRadius(c combat.Snapshot) float64 {
	r := c.DefensiveRadius
	if r <= 0 {
		return 0
	}
	raw := Clamp01((c.Distance-r)/r) * s.weights.Weights().MoveToStance.Master
	return s.finish(graph.MoveToStanceRadius, raw)
}

// MoveToAttackRange 长时间未受击、资源占优、体力充足时倾向压上
func (s *Scorer) MoveToAttackRange(c combat.Snapshot) float64 {
	if c.Distance < c.IdealLightRange || c.SeenIncomingAttack {
		return 0
	}
	w := s.weights.Weights().MoveToAttack

	recentHit := SmoothStep(InverseLerp(3, 5, c.TimeSinceLastHit))
	hpDiff := resourceDiff(c.HealthPercent, c.TargetHealthPercent)
	stamDiff := resourceDiff(c.StaminaPercent, c.TargetStaminaPercent)
	stamSufficient := InverseLerp(0.2, 0.5, c.StaminaPercent)
	moreResources := ValueHigh((hpDiff+stamDiff)/2, 0.4, 0.7)

	raw := recentHit*w.RecentHit +
		hpDiff*w.HealthDiff +
		stamDiff*w.StaminaDiff +
		stamSufficient*w.StaminaReady +
		moreResources*w.ResourceBonus
	return s.finish(graph.MoveToAttackRange, raw*w.Master)
}

// CombatStance 刚受击、资源劣势、体力不足时倾向游走
func (s *Scorer) CombatStance(c combat.Snapshot) float64 {
	recentHit := 1 - InverseLerp(0, RecentHitWindow, c.TimeSinceLastHit)
	total := (resourceDiff(c.TargetHealthPercent, c.HealthPercent) +
		resourceDiff(c.TargetStaminaPercent, c.StaminaPercent)) / 2
	stamLow := 1 - InverseLerp(0.2, 0.5, c.StaminaPercent)

	raw := ApplyCompensationToScore(recentHit*total*stamLow, 3)
	return s.finish(graph.CombatStance, raw*s.weights.Weights().CombatStance.Master)
}

// HoldBlock 仅在看到来袭攻击、体力足够、距离够近时考虑
func (s *Scorer) HoldBlock(c combat.Snapshot) float64 {
	if !c.SeenIncomingAttack || c.StaminaPercent < 0.1 || c.Distance > c.TargetAttackRange*BlockRangeMargin {
		return 0
	}
	danger := ValueHigh(c.IncomingDamage, c.TargetLightDamage, c.TargetMinHeavyDamage)
	staminaCheap := 1 - c.StaminaDrainPerBlock*c.TargetHeavyBlockDrainMultiplier
	oppCheap := 1 - ValueHigh(c.HealthPercent-c.TargetHealthPercent, 0, 0.3)

	raw := ApplyCompensationToScore(danger*staminaCheap*oppCheap, 3)
	return s.finish(graph.HoldBlock, raw*s.weights.Weights().HoldBlock.Master)
}

// DodgeAttack 目标蓄力重击且自身位于攻击范围边缘时闪避
func (s *Scorer) DodgeAttack(c combat.Snapshot) float64 {
	if !c.SeenIncomingAttack || c.TargetHeavyChargePercent <= 0 {
		return 0
	}
	r := c.TargetAttackRange
	rise := InverseLerp(r*0.9, r*1.1, c.Distance)
	fall := Clamp01(1 - InverseLerp(r*1.1, r*1.2, c.Distance))
	enemyHeavy := Bit(c.TargetHeavyChargePercent > 0)

	raw := ApplyCompensationToScore(math.Min(rise, fall)*enemyHeavy, 2)
	return s.finish(graph.DodgeAttack, raw*s.weights.Weights().Dodge.Master)
}

// LightAttack 接近理想距离、体力处于中段时最高
func (s *Scorer) LightAttack(c combat.Snapshot) float64 {
	w := s.weights.Weights().LightAttack

	proximity := SmoothStep(Clamp01(1 - InverseLerp(c.IdealLightRange, c.LightRange, c.Distance)))
	staminaBump := math.Min(
		InverseLerp(0.25, 0.40, c.StaminaPercent),
		Clamp01(1-InverseLerp(0.40, 0.75, c.StaminaPercent)),
	)
	hpDiff := resourceDiff(c.TargetHealthPercent, c.HealthPercent)
	enemyLowStamina := ValueLow(c.TargetStaminaPercent, 0, 0.3)
	highStamina := ValueHigh(c.StaminaPercent, 0.4, 0.7)

	raw := proximity*w.Proximity +
		staminaBump*w.StaminaLightBonus +
		hpDiff*w.HealthDiffBonus +
		enemyLowStamina*w.EnemyLowStaminaBonus +
		highStamina*w.HighStaminaBonus
	return s.finish(graph.LightAttack, raw*w.Master)
}

// StartHeavyAttack 体力不足 40% 时不考虑
func (s *Scorer) StartHeavyAttack(c combat.Snapshot) float64 {
	if c.StaminaPercent < 0.4 {
		return 0
	}
	w := s.weights.Weights().HeavyAttack

	distance := ValueLow(c.Distance, 0, c.HeavyRange*0.6)
	enemyHealth := ValueHigh(c.TargetHealthPercent, 0.1, 0.3)
	stamina := ValueHigh(c.StaminaPercent, 0.4, 1)
	health := ValueHigh(c.HealthPercent, 0.2, 0.5)
	myHighHP := ValueHigh(c.HealthPercent, 0.3, 0.6)

	raw := distance*w.Proximity +
		enemyHealth*w.LowEnemyHealth +
		stamina*w.HighStamina +
		health*w.LowHealth +
		myHighHP*w.HighHealth
	return s.finish(graph.StartHeavyAttack, raw*w.Master)
}

// ReleaseHeavyAttack 自身蓄力越满、目标越接近攻击范围边缘越倾向释放
func (s *Scorer) ReleaseHeavyAttack(c combat.Snapshot) float64 {
	w := s.weights.Weights().ReleaseHeavy

	distance := Clamp01(1 - InverseLerp(c.TargetAttackRange*0.8, c.TargetAttackRange, c.Distance))
	raw := c.HeavyChargePercent*w.HoldPercent +
		distance*w.EnemyDistance +
		Bit(c.TargetHeavyChargePercent > 0)*w.EnemyChargingHeavy +
		Bit(c.TargetBlocking)*w.EnemyBlocking
	return s.finish(graph.ReleaseHeavyAttack, raw*w.Master)
}

// Retreat 血量、体力都低且资源明显劣势时撤退
func (s *Scorer) Retreat(c combat.Snapshot) float64 {
	lowHealth := ValueLow(c.HealthPercent, 0, 0.2)
	distance := ValueLow(c.Distance, 0.5, c.TargetAttackRange)
	lowStamina := ValueLow(c.StaminaPercent, 0, 0.15)
	diff := ((c.TargetHealthPercent - c.HealthPercent) + (c.TargetStaminaPercent - c.StaminaPercent)) / 2
	diffHigh := ValueHigh(diff, 0.4, 0.7)

	raw := ApplyCompensationToScore(lowHealth*distance*lowStamina*diffHigh, 4)
	return s.finish(graph.Retreat, raw*s.weights.Weights().Retreat.Master)
}
