package prometheus

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Config Prometheus 配置
type Config struct {
	Namespace              string           `mapstructure:"namespace" validate:"required"`
	Subsystem              string           `mapstructure:"subsystem"`
	HTTPServer             HTTPServerConfig `mapstructure:"http_server"`
	EnableGoCollector      bool             `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool             `mapstructure:"enable_process_collector"`
}

// HTTPServerConfig 独立的指标暴露服务
type HTTPServerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace: "combatai",
		HTTPServer: HTTPServerConfig{
			Addr:    ":9090",
			Path:    "/metrics",
			Timeout: 10 * time.Second,
		},
		EnableGoCollector: true,
	}
}

// Validate 校验并补全 HTTP 默认值
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return errors.Wrap(ErrInvalidConfig, "namespace is empty")
	}
	if !c.HTTPServer.Enabled {
		return nil
	}
	if c.HTTPServer.Addr == "" {
		return errors.Wrap(ErrInvalidConfig, "http_server.addr is empty")
	}
	if c.HTTPServer.Path == "" {
		c.HTTPServer.Path = "/metrics"
	}
	if c.HTTPServer.Timeout == 0 {
		c.HTTPServer.Timeout = 10 * time.Second
	}
	return nil
}
