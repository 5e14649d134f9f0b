package utility

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
)

var (
	ErrUnknownWeight = errors.New("utility: unknown weight")
	ErrUnknownGroup  = errors.New("utility: no weight group for action")
	ErrRebalancing   = errors.New("utility: rebalance already in progress")
)

// MasterName 每组的总乘数，不参与归一化
const MasterName = "master"

// MasterWeights 只有总乘数的组
type MasterWeights struct {
	Master float64 `mapstructure:"master" validate:"gte=0"`
}

type MoveToAttackWeights struct {
	Master       float64 `mapstructure:"master" validate:"gte=0"`
	RecentHit    float64 `mapstructure:"recent_hit" validate:"gte=0,lte=1"`
	HealthDiff   float64 `mapstructure:"health_diff" validate:"gte=0,lte=1"`
	StaminaDiff  float64 `mapstructure:"stamina_diff" validate:"gte=0,lte=1"`
	StaminaReady float64 `mapstructure:"stamina_ready" validate:"gte=0,lte=1"`
	// ResourceBonus 资源优势的附加分，不参与归一化
	ResourceBonus float64 `mapstructure:"resource_bonus" validate:"gte=0"`
}

type LightAttackWeights struct {
	Master               float64 `mapstructure:"master" validate:"gte=0"`
	Proximity            float64 `mapstructure:"proximity" validate:"gte=0,lte=1"`
	StaminaLightBonus    float64 `mapstructure:"stamina_light_bonus" validate:"gte=0,lte=1"`
	HealthDiffBonus      float64 `mapstructure:"health_diff_bonus" validate:"gte=0,lte=1"`
	EnemyLowStaminaBonus float64 `mapstructure:"enemy_low_stamina_bonus" validate:"gte=0,lte=1"`
	HighStaminaBonus     float64 `mapstructure:"high_stamina_bonus" validate:"gte=0,lte=1"`
}

type HeavyAttackWeights struct {
	Master         float64 `mapstructure:"master" validate:"gte=0"`
	Proximity      float64 `mapstructure:"proximity" validate:"gte=0,lte=1"`
	LowEnemyHealth float64 `mapstructure:"low_enemy_health" validate:"gte=0,lte=1"`
	HighStamina    float64 `mapstructure:"high_stamina" validate:"gte=0,lte=1"`
	LowHealth      float64 `mapstructure:"low_health" validate:"gte=0,lte=1"`
	HighHealth     float64 `mapstructure:"high_health" validate:"gte=0,lte=1"`
}

type ReleaseHeavyWeights struct {
	Master             float64 `mapstructure:"master" validate:"gte=0"`
	HoldPercent        float64 `mapstructure:"hold_percent" validate:"gte=0,lte=1"`
	EnemyDistance      float64 `mapstructure:"enemy_distance" validate:"gte=0,lte=1"`
	EnemyChargingHeavy float64 `mapstructure:"enemy_charging_heavy" validate:"gte=0,lte=1"`
	EnemyBlocking      float64 `mapstructure:"enemy_blocking" validate:"gte=0,lte=1"`
}

// Weights 可热更新的效用权重，每种动作一组
type Weights struct {
	MoveToStance MasterWeights       `mapstructure:"move_to_stance"`
	MoveToAttack MoveToAttackWeights `mapstructure:"move_to_attack"`
	CombatStance MasterWeights       `mapstructure:"combat_stance"`
	HoldBlock    MasterWeights       `mapstructure:"hold_block"`
	LightAttack  LightAttackWeights  `mapstructure:"light_attack"`
	HeavyAttack  HeavyAttackWeights  `mapstructure:"heavy_attack"`
	ReleaseHeavy ReleaseHeavyWeights `mapstructure:"release_heavy"`
	Dodge        MasterWeights       `mapstructure:"dodge"`
	Retreat      MasterWeights       `mapstructure:"retreat"`
}

// DefaultWeights 默认权重
func DefaultWeights() *Weights {
	return &Weights{
		MoveToStance: MasterWeights{Master: 1},
		MoveToAttack: MoveToAttackWeights{
			Master:        1,
			RecentHit:     0.1157351,
			HealthDiff:    0.2500196,
			StaminaDiff:   0.2177424,
			StaminaReady:  0.1901557,
			ResourceBonus: 1,
		},
		CombatStance: MasterWeights{Master: 1},
		HoldBlock:    MasterWeights{Master: 1},
		LightAttack: LightAttackWeights{
			Master:            1,
			Proximity:         0.6,
			StaminaLightBonus: 0.4,
		},
		HeavyAttack: HeavyAttackWeights{
			Master:         1,
			Proximity:      0.6,
			LowEnemyHealth: 0.4,
		},
		ReleaseHeavy: ReleaseHeavyWeights{
			Master:        1,
			HoldPercent:   0.6,
			EnemyDistance: 0.4,
		},
		Dodge:   MasterWeights{Master: 1},
		Retreat: MasterWeights{Master: 1},
	}
}

// Clone 深拷贝（全部为值字段）
func (w *Weights) Clone() *Weights {
	c := *w
	return &c
}

// Factor 参与归一化的具名权重
type Factor struct {
	Name  string
	Value *float64
}

// group 返回 kind 对应组的总乘数与按顺序排列的归一化因子
func (w *Weights) group(kind graph.ActionKind) (*float64, []Factor, bool) {
	switch kind {
	case graph.MoveToStanceRadius:
		return &w.MoveToStance.Master, nil, true
	case graph.MoveToAttackRange:
		g := &w.MoveToAttack
		return &g.Master, []Factor{
			{"recent_hit", &g.RecentHit},
			{"health_diff", &g.HealthDiff},
			{"stamina_diff", &g.StaminaDiff},
			{"stamina_ready", &g.StaminaReady},
		}, true
	case graph.CombatStance:
		return &w.CombatStance.Master, nil, true
	case graph.HoldBlock:
		return &w.HoldBlock.Master, nil, true
	case graph.LightAttack:
		g := &w.LightAttack
		return &g.Master, []Factor{
			{"proximity", &g.Proximity},
			{"stamina_light_bonus", &g.StaminaLightBonus},
			{"health_diff_bonus", &g.HealthDiffBonus},
			{"enemy_low_stamina_bonus", &g.EnemyLowStaminaBonus},
			{"high_stamina_bonus", &g.HighStaminaBonus},
		}, true
	case graph.StartHeavyAttack:
		g := &w.HeavyAttack
		return &g.Master, []Factor{
			{"proximity", &g.Proximity},
			{"low_enemy_health", &g.LowEnemyHealth},
			{"high_stamina", &g.HighStamina},
			{"low_health", &g.LowHealth},
			{"high_health", &g.HighHealth},
		}, true
	case graph.ReleaseHeavyAttack:
		g := &w.ReleaseHeavy
		return &g.Master, []Factor{
			{"hold_percent", &g.HoldPercent},
			{"enemy_distance", &g.EnemyDistance},
			{"enemy_charging_heavy", &g.EnemyChargingHeavy},
			{"enemy_blocking", &g.EnemyBlocking},
		}, true
	case graph.DodgeAttack:
		return &w.Dodge.Master, nil, true
	case graph.Retreat:
		return &w.Retreat.Master, nil, true
	default:
		return nil, nil, false
	}
}

// Factors kind 组内参与归一化的权重
func (w *Weights) Factors(kind graph.ActionKind) []Factor {
	_, factors, _ := w.group(kind)
	return factors
}

// Rebalance 将组内因子缩放到和为 1；和为 0 时第一个因子置 1
func (w *Weights) Rebalance(kind graph.ActionKind) error {
	_, factors, ok := w.group(kind)
	if !ok {
		return errors.Wrapf(ErrUnknownGroup, "%s", kind)
	}
	if len(factors) == 0 {
		return nil
	}

	var total float64
	for _, f := range factors {
		total += *f.Value
	}
	if total == 0 {
		*factors[0].Value = 1
		return nil
	}
	for _, f := range factors {
		*f.Value /= total
	}
	return nil
}

// Set 修改一个权重，其余因子按原比例分配剩余的 1-value
// name 为 master 时只修改总乘数
func (w *Weights) Set(kind graph.ActionKind, name string, value float64) error {
	master, factors, ok := w.group(kind)
	if !ok {
		return errors.Wrapf(ErrUnknownGroup, "%s", kind)
	}
	if name == MasterName {
		*master = max(0, value)
		return nil
	}

	target := -1
	for i, f := range factors {
		if f.Name == name {
			target = i
			break
		}
	}
	if target < 0 {
		return errors.Wrapf(ErrUnknownWeight, "%s.%s", kind, name)
	}

	value = Clamp01(value)
	*factors[target].Value = value

	var others float64
	for i, f := range factors {
		if i != target {
			others += *f.Value
		}
	}
	remain := 1 - value
	for i, f := range factors {
		if i == target {
			continue
		}
		if others == 0 {
			*f.Value = remain / float64(len(factors)-1)
			continue
		}
		*f.Value *= remain / others
	}
	return nil
}
