//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/combatai/app/arena/internal/manager"
	"github.com/lk2023060901/combatai/app/arena/internal/metrics"
	"github.com/lk2023060901/combatai/pkg/app"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/lk2023060901/combatai/pkg/metrics/system"
	"github.com/lk2023060901/combatai/pkg/prometheus"
)

func InitApp(cfg *Config, l logger.Logger) (*app.BaseApp, error) {
	panic(wire.Build(
		// 1. 基础框架
		app.ProviderSet,

		// 2. Prometheus 客户端与决策指标
		providePrometheusConfig,
		prometheus.New,
		metrics.New,
		system.New,

		// 3. 行为图、权重与引擎参数
		provideGraph,
		provideWeights,
		provideWeightsSource,
		provideParams,

		// 4. 场地与决策循环管理
		provideWorld,
		provideManagerConfig,
		provideMatchIDs,
		provideManagerOptions,
		manager.New,

		// 5. 组装
		provideComponents,
	))
}
