package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/combatai/app/arena/internal/engine"
	"github.com/lk2023060901/combatai/app/arena/internal/fighter"
	"github.com/lk2023060901/combatai/app/arena/internal/manager"
	"github.com/lk2023060901/combatai/pkg/app"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/lk2023060901/combatai/pkg/prometheus"
)

// GraphConfig 行为图资源
type GraphConfig struct {
	// Path 相对路径以配置文件所在目录为基准
	Path string `mapstructure:"path" validate:"required"`
}

// WeightsConfig 效用权重
type WeightsConfig struct {
	// Path 为空时使用内置权重且不热更新
	Path string `mapstructure:"path"`
}

// Config arena 服务的完整配置
type Config struct {
	Log        logger.Config     `mapstructure:"log"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	Engine  engine.Params       `mapstructure:"engine"`
	Arena   fighter.ArenaConfig `mapstructure:"arena"`
	Manager manager.Config      `mapstructure:"manager"`
	Graph   GraphConfig         `mapstructure:"graph"`
	Weights WeightsConfig       `mapstructure:"weights"`

	dir string
}

func defaultConfig() *Config {
	return &Config{
		Log:        *logger.DefaultConfig(),
		Prometheus: *prometheus.DefaultConfig(),
		Engine:     *engine.DefaultParams(),
		Arena:      fighter.DefaultArenaConfig(),
		Manager:    manager.DefaultConfig(),
	}
}

// resolve 相对路径按配置文件目录展开
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func main() {
	flags, err := app.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 1. 加载配置
	cfg := defaultConfig()
	if _, err := app.LoadConfig(flags, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.dir = filepath.Dir(flags.ConfigPath)

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.SetDefault(l)

	// 3. 通过 Wire 初始化应用
	application, err := InitApp(cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		_ = l.Sync()
		os.Exit(1)
	}

	// 4. 运行直到收到退出信号
	if err := application.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
