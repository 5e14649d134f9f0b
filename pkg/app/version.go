package app

import (
	"fmt"
	"runtime"
)

// 编译时通过 -ldflags "-X github.com/lk2023060901/combatai/pkg/app.Version=v1.0.0" 注入
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	AppName   = "combatai"
)

// Info 版本信息
type Info struct {
	AppName   string
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
}

// GetInfo 当前版本信息
func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		i.AppName, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, runtime.GOOS, runtime.GOARCH)
}
