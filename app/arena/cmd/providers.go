package main

import (
	"github.com/lk2023060901/combatai/app/arena/internal/engine"
	"github.com/lk2023060901/combatai/app/arena/internal/fighter"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/app/arena/internal/manager"
	"github.com/lk2023060901/combatai/app/arena/internal/metrics"
	"github.com/lk2023060901/combatai/app/arena/internal/utility"
	"github.com/lk2023060901/combatai/pkg/app"
	"github.com/lk2023060901/combatai/pkg/config"
	"github.com/lk2023060901/combatai/pkg/idgen"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/lk2023060901/combatai/pkg/metrics/system"
	"github.com/lk2023060901/combatai/pkg/prometheus"
)

// providePrometheusConfig 提供 Prometheus 配置
func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

// provideGraph 加载行为图；结构问题只告警，根无效时由决策循环报错
func provideGraph(cfg *Config, l logger.Logger) (*graph.Index, error) {
	path := cfg.resolve(cfg.Graph.Path)
	c, err := graph.LoadFile(path)
	if err != nil {
		return nil, err
	}
	idx := graph.NewIndex(c, l)
	if err := idx.Validate(); err != nil {
		l.Warn("behavior graph has problems", "path", path, "error", err)
	}
	l.Info("behavior graph loaded", "path", path, "name", c.Name, "groups", c.GroupNames())
	return idx, nil
}

// weights 权重容器及其文件监听器，未配置路径时 watcher 为 nil
type weights struct {
	store   *utility.Store
	watcher *config.Watcher[utility.Weights]
}

// provideWeights 配置了路径时从文件加载并热更新
func provideWeights(cfg *Config, l logger.Logger) (*weights, error) {
	w := &weights{store: utility.NewStore(nil, l)}
	path := cfg.resolve(cfg.Weights.Path)
	if path == "" {
		return w, nil
	}
	watcher, err := w.store.Watch(path)
	if err != nil {
		return nil, err
	}
	w.watcher = watcher
	return w, nil
}

// provideWeightsSource 决策循环只读取权重
func provideWeightsSource(w *weights) utility.WeightsSource {
	return w.store
}

// provideParams 提供引擎参数
func provideParams(cfg *Config) *engine.Params {
	return &cfg.Engine
}

// provideWorld 提供场地
func provideWorld(cfg *Config, l logger.Logger) *fighter.World {
	return fighter.NewWorld(cfg.Arena, l)
}

// provideManagerConfig 提供管理器配置
func provideManagerConfig(cfg *Config) manager.Config {
	return cfg.Manager
}

// provideMatchIDs 对局 id 生成器
func provideMatchIDs(cfg *Config) (*idgen.Sonyflake, error) {
	return idgen.NewSonyflake(cfg.Manager.MachineID)
}

// provideManagerOptions 决策指标同时作为统计出口和动作变化监听者
func provideManagerOptions(m *metrics.ArenaMetrics, s *system.Sampler, ids *idgen.Sonyflake) []manager.Option {
	return []manager.Option{
		manager.WithRecorder(m),
		manager.WithSampler(s),
		manager.WithMatchIDs(ids),
	}
}

// provideComponents 提供应用组件
func provideComponents(mgr *manager.ArenaManager, promClient *prometheus.Client, w *weights) app.Components {
	closers := []app.Closer{promClient, mgr}
	if w.watcher != nil {
		closers = append(closers, w.watcher)
	}
	return app.Components{
		Servers: []app.Server{mgr},
		Closers: closers,
	}
}
