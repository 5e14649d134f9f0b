package prometheus

import "github.com/prometheus/client_golang/prometheus"

type (
	Labels       = prometheus.Labels
	CounterVec   = prometheus.CounterVec
	GaugeVec     = prometheus.GaugeVec
	HistogramVec = prometheus.HistogramVec
	Registry     = prometheus.Registry
	Collector    = prometheus.Collector
)
