package config

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix 环境变量前缀
const DefaultEnvPrefix = "COMBATAI"

// Manager 配置管理器
type Manager interface {
	LoadFile(path string) error
	Unmarshal(v any) error
	UnmarshalKey(key string, v any) error
	Get(key string) any
	GetString(key string) string
	IsSet(key string) bool
	// Watch 监听文件变化，每次变化后回调
	Watch(callback func(path string))
	// Path 当前加载的文件
	Path() string
}

type manager struct {
	v    *viper.Viper
	mu   sync.RWMutex
	path string
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{v: viper.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Mark(errors.Wrapf(err, "config: stat %s", path), ErrConfigFileNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "config: read %s", path)
	}
	m.path = path
	return nil
}

// decodeHook 支持 "1.5s" 形式的时长与逗号分隔的切片
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.v.Unmarshal(v, decodeHook()); err != nil {
		return errors.Wrap(err, "config: unmarshal")
	}
	return nil
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.v.UnmarshalKey(key, v, decodeHook()); err != nil {
		return errors.Wrapf(err, "config: unmarshal key %s", key)
	}
	return nil
}

func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.Get(key)
}

func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

func (m *manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

func (m *manager) Watch(callback func(path string)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		callback(e.Name)
	})
	m.v.WatchConfig()
}

// Load 加载文件并解析到 T，随后执行结构体校验
func Load[T any](path string, opts ...Option) (*T, error) {
	m := NewManager(opts...)
	if err := m.LoadFile(path); err != nil {
		return nil, err
	}
	var cfg T
	if err := m.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
