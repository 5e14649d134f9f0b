package manager

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

// SpawnConfig 启动时放入场地的 NPC
type SpawnConfig struct {
	ID       string      `mapstructure:"id" validate:"required"`
	Position combat.Vec2 `mapstructure:"position"`
	Unarmed  bool        `mapstructure:"unarmed"`
}

// Config 管理器配置
type Config struct {
	// PoolSize 决策循环协程池容量，不大于 0 时不限
	PoolSize       int           `mapstructure:"pool_size" validate:"gte=0"`
	ReportInterval time.Duration `mapstructure:"report_interval" validate:"gt=0"`
	Fighters       []SpawnConfig `mapstructure:"fighters" validate:"dive"`
	// MachineID 对局 id 生成器的机器号，同一集群内唯一
	MachineID uint16 `mapstructure:"machine_id"`
}

// DefaultConfig 两个 NPC 对决
func DefaultConfig() Config {
	return Config{
		PoolSize:       16,
		ReportInterval: time.Second,
		Fighters: []SpawnConfig{
			{ID: "red", Position: combat.Vec2{X: -4}},
			{ID: "blue", Position: combat.Vec2{X: 4}},
		},
	}
}
