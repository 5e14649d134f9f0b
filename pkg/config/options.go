package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Option 配置管理器选项
type Option func(*manager)

// WithDefaults 设置默认值
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for k, v := range defaults {
			m.v.SetDefault(k, v)
		}
	}
}

// WithOverrides 设置最高优先级的值，覆盖文件与环境变量
func WithOverrides(values map[string]any) Option {
	return func(m *manager) {
		for k, v := range values {
			m.v.Set(k, v)
		}
	}
}

// WithConfigType 显式指定文件类型（yaml、json、toml）
func WithConfigType(configType string) Option {
	return func(m *manager) { m.v.SetConfigType(configType) }
}

// WithEnvPrefix 开启环境变量覆盖，COMBATAI_LOG_LEVEL -> log.level
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		if prefix == "" {
			return
		}
		m.v.SetEnvPrefix(prefix)
		m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		m.v.AutomaticEnv()
	}
}

// WithViper 使用外部 viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		if v != nil {
			m.v = v
		}
	}
}
