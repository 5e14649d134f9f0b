package prometheus

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/util/conc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
)

// Client Prometheus 客户端
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]prometheus.Collector

	httpServer *http.Server
	serveErr   *conc.Future[struct{}]
	closed     atomic.Bool
}

// New 创建客户端；HTTPServer.Enabled 时立即开始监听
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		metrics:  make(map[string]prometheus.Collector),
	}
	if cfg.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if cfg.HTTPServer.Enabled {
		c.startHTTPServer()
	}
	return c, nil
}

// Registry 底层注册器
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 用于挂载到已有 HTTP 服务
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *Client) startHTTPServer() {
	mux := http.NewServeMux()
	mux.Handle(c.config.HTTPServer.Path, c.Handler())

	c.httpServer = &http.Server{
		Addr:         c.config.HTTPServer.Addr,
		Handler:      mux,
		ReadTimeout:  c.config.HTTPServer.Timeout,
		WriteTimeout: c.config.HTTPServer.Timeout,
	}
	c.serveErr = conc.Go(func() (struct{}, error) {
		if err := c.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return struct{}{}, errors.Wrap(err, "prometheus: serve")
		}
		return struct{}{}, nil
	})
}

// ServeErr HTTP 服务退出后的结果
func (c *Client) ServeErr() (*conc.Future[struct{}], error) {
	if c.serveErr == nil {
		return nil, ErrServerNotReady
	}
	return c.serveErr, nil
}

func (c *Client) register(name string, build func(ns, sub string) prometheus.Collector) (prometheus.Collector, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.metrics[name]; ok {
		return nil, errors.Wrapf(ErrMetricExists, "name %s", name)
	}
	col := build(c.config.Namespace, c.config.Subsystem)
	if err := c.registry.Register(col); err != nil {
		return nil, errors.Wrapf(err, "prometheus: register %s", name)
	}
	c.metrics[name] = col
	return col, nil
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*CounterVec, error) {
	col, err := c.register(name, func(ns, sub string) prometheus.Collector {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help,
		}, labels)
	})
	if err != nil {
		return nil, err
	}
	return col.(*CounterVec), nil
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*GaugeVec, error) {
	col, err := c.register(name, func(ns, sub string) prometheus.Collector {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help,
		}, labels)
	})
	if err != nil {
		return nil, err
	}
	return col.(*GaugeVec), nil
}

// NewHistogram 创建并注册 Histogram，buckets 为空时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	col, err := c.register(name, func(ns, sub string) prometheus.Collector {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, Buckets: buckets,
		}, labels)
	})
	if err != nil {
		return nil, err
	}
	return col.(*HistogramVec), nil
}

// Close 关闭 HTTP 服务
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	if c.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.httpServer.Shutdown(ctx)
}
