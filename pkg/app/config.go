package app

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/config"
	"github.com/spf13/pflag"
)

// Flags 命令行参数
type Flags struct {
	ConfigPath string
	LogPath    string
	set        *pflag.FlagSet
}

// ParseFlags 解析命令行；优先级：显式参数 > COMBATAI_CONFIG > 可执行文件目录下的 config.yaml
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{set: pflag.NewFlagSet(AppName, pflag.ContinueOnError)}
	f.set.StringVarP(&f.ConfigPath, "config", "c", defaultConfigPath(), "path to config file")
	f.set.StringVar(&f.LogPath, "log.path", "", "override log.output_path")
	if err := f.set.Parse(args); err != nil {
		return nil, errors.Wrap(err, "app: parse flags")
	}
	if !f.set.Changed("config") {
		if env := os.Getenv(config.DefaultEnvPrefix + "_CONFIG"); env != "" {
			f.ConfigPath = env
		}
	}
	return f, nil
}

// LoadConfig 加载配置文件并解析到 target，环境变量可覆盖文件内容
func LoadConfig(f *Flags, target any, opts ...config.Option) (config.Manager, error) {
	opts = append([]config.Option{config.WithEnvPrefix(config.DefaultEnvPrefix)}, opts...)
	if f.LogPath != "" {
		opts = append(opts, config.WithOverrides(map[string]any{
			"log.output_path": f.LogPath,
			"log.enable_file": true,
		}))
	}

	mgr := config.NewManager(opts...)
	if err := mgr.LoadFile(f.ConfigPath); err != nil {
		return nil, err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(target); err != nil {
		return nil, err
	}
	return mgr, nil
}

func defaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}
