// Package system 采样当前进程的资源占用
package system

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 一次采样结果
type Stats struct {
	// 自上次采样以来的进程 CPU 使用率 (0-100*核数)
	CPUPercent float64
	// RSS 占物理内存的百分比
	MemoryPercent float64
	RSSBytes      uint64
	Goroutines    int
	SampledAt     time.Time
}

// Sampler 进程资源采样器，可并发调用
type Sampler struct {
	proc *process.Process

	mu   sync.Mutex
	last Stats
}

func New() (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "system: open process")
	}
	return &Sampler{proc: proc}, nil
}

// Sample 立即采样一次；单项失败不影响其余字段，错误合并返回
func (s *Sampler) Sample(ctx context.Context) (Stats, error) {
	st := Stats{
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now(),
	}
	var errs []error

	s.mu.Lock()
	defer s.mu.Unlock()

	if cpu, err := s.proc.PercentWithContext(ctx, 0); err == nil {
		st.CPUPercent = cpu
	} else {
		errs = append(errs, errors.Wrap(err, "system: cpu"))
	}
	if info, err := s.proc.MemoryInfoWithContext(ctx); err == nil {
		st.RSSBytes = info.RSS
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
			st.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
	} else {
		errs = append(errs, errors.Wrap(err, "system: memory"))
	}

	s.last = st
	return st, errors.Join(errs...)
}

// Last 最近一次采样结果
func (s *Sampler) Last() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
