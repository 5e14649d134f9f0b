package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/engine"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/metrics/system"
	"github.com/lk2023060901/combatai/pkg/prometheus"
)

// 决策帧耗时分桶，单位秒
var tickBuckets = []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01}

// ArenaMetrics 决策循环指标，同时实现 engine.Reporter 与 engine.Observer
type ArenaMetrics struct {
	transitions *prometheus.CounterVec
	exitRefused *prometheus.CounterVec
	selections  *prometheus.CounterVec
	tickLatency *prometheus.HistogramVec
	activeLoops *prometheus.GaugeVec
	alive       *prometheus.GaugeVec

	cpu        *prometheus.GaugeVec
	rss        *prometheus.GaugeVec
	memPercent *prometheus.GaugeVec
	goroutines *prometheus.GaugeVec
}

var (
	_ engine.Reporter = (*ArenaMetrics)(nil)
	_ engine.Observer = (*ArenaMetrics)(nil)
)

// New 在 client 上注册全部指标，任一注册失败时返回合并后的错误
func New(c *prometheus.Client) (*ArenaMetrics, error) {
	m := &ArenaMetrics{}
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	m.transitions, err = c.NewCounter("action_transitions_total", "Current action transitions.", []string{"from", "to"})
	collect(err)
	m.exitRefused, err = c.NewCounter("exit_refused_total", "Transitions refused by the current action's exit guard.", []string{"kind"})
	collect(err)
	m.selections, err = c.NewCounter("selector_outcomes_total", "Utility selector evaluation outcomes.", []string{"selector", "outcome"})
	collect(err)
	m.tickLatency, err = c.NewHistogram("tick_duration_seconds", "Decision tick latency.", nil, tickBuckets)
	collect(err)
	m.activeLoops, err = c.NewGauge("active_loops", "Running decision loops.", nil)
	collect(err)
	m.alive, err = c.NewGauge("alive_fighters", "Living fighters in the arena.", nil)
	collect(err)
	m.cpu, err = c.NewGauge("process_cpu_percent", "Process CPU usage since the previous sample.", nil)
	collect(err)
	m.rss, err = c.NewGauge("process_rss_bytes", "Process resident memory.", nil)
	collect(err)
	m.memPercent, err = c.NewGauge("process_memory_percent", "Process resident memory as a share of physical memory.", nil)
	collect(err)
	m.goroutines, err = c.NewGauge("process_goroutines", "Live goroutines.", nil)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "metrics: register")
	}
	return m, nil
}

func (m *ArenaMetrics) OnActionChanged(c engine.ActionChange) {
	m.transitions.WithLabelValues(string(c.From), string(c.To)).Inc()
}

func (m *ArenaMetrics) SelectorOutcome(selectorID string, outcome engine.Outcome) {
	m.selections.WithLabelValues(selectorID, string(outcome)).Inc()
}

func (m *ArenaMetrics) ExitRefused(kind graph.ActionKind) {
	m.exitRefused.WithLabelValues(string(kind)).Inc()
}

func (m *ArenaMetrics) TickDuration(d time.Duration) {
	m.tickLatency.WithLabelValues().Observe(d.Seconds())
}

// LoopStarted 与 LoopStopped 成对调用
func (m *ArenaMetrics) LoopStarted() { m.activeLoops.WithLabelValues().Inc() }

func (m *ArenaMetrics) LoopStopped() { m.activeLoops.WithLabelValues().Dec() }

// SetAlive 记录存活角色数
func (m *ArenaMetrics) SetAlive(n int) {
	m.alive.WithLabelValues().Set(float64(n))
}

// ObserveProcess 写入进程采样
func (m *ArenaMetrics) ObserveProcess(s system.Stats) {
	m.cpu.WithLabelValues().Set(s.CPUPercent)
	m.rss.WithLabelValues().Set(float64(s.RSSBytes))
	m.memPercent.WithLabelValues().Set(s.MemoryPercent)
	m.goroutines.WithLabelValues().Set(float64(s.Goroutines))
}
