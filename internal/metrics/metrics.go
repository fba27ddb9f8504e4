package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aurum"

// 阶段名称
const (
	PhasePrice = "price"
	PhaseNews  = "news"
)

// 阶段结果
const (
	ResultOK     = "ok"
	ResultSkip   = "skip"
	ResultFailed = "failed"
)

// Metrics 刷新流程相关的监控指标
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal  prometheus.Counter
	PhaseTotal   *prometheus.CounterVec
	NewsItems    *prometheus.CounterVec
	LastSuccess  *prometheus.GaugeVec
	LatestPrice  prometheus.Gauge
	CycleSeconds prometheus.Histogram
}

// New 创建并注册指标，registry 为 nil 时新建独立的 registry
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Number of refresh cycles executed.",
		}),
		PhaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_phase_total",
			Help:      "Refresh phase outcomes.",
		}, []string{"phase", "result"}),
		NewsItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_items_total",
			Help:      "News items processed by outcome.",
		}, []string{"outcome"}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful phase.",
		}, []string{"phase"}),
		LatestPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gold_price_usd",
			Help:      "Latest extracted gold price in USD per ounce.",
		}),
		CycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Refresh cycle duration.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}
	registry.MustRegister(
		m.CyclesTotal, m.PhaseTotal, m.NewsItems, m.LastSuccess, m.LatestPrice, m.CycleSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// NewDefault wire 使用的构造函数
func NewDefault() *Metrics {
	return New(nil)
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
