package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
)

const namespace = "wagus"

// Metrics holds the portal's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	price           prometheus.Gauge
	treasury        prometheus.Gauge
	effectiveSupply prometheus.Gauge
	dailyVolume     prometheus.Gauge
	stale           prometheus.Gauge
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		price: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "price_usd",
			Help:      "Last computed token price in USD.",
		}),
		treasury: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "treasury_value_usd",
			Help:      "Simulated treasury value in USD.",
		}),
		effectiveSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "effective_supply",
			Help:      "Circulating supply minus staked and burned tokens.",
		}),
		dailyVolume: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "daily_volume_usd",
			Help:      "Simulated daily trading volume in USD.",
		}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "price_stale",
			Help:      "1 when the last price cycle failed and the previous price is being served.",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycles_total",
			Help:      "Price cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of price cycles including persistence and publishing.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.price,
		m.treasury,
		m.effectiveSupply,
		m.dailyVolume,
		m.stale,
		m.cycles,
		m.cycleDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveCycle implements pricing.CycleObserver
func (m *Metrics) ObserveCycle(snap pricing.Snapshot, took time.Duration, err error) {
	m.cycleDuration.Observe(took.Seconds())
	if err != nil {
		m.cycles.WithLabelValues("failed").Inc()
		m.stale.Set(1)
		return
	}

	m.cycles.WithLabelValues("ok").Inc()
	m.stale.Set(0)
	m.price.Set(snap.Price)
	m.treasury.Set(snap.TreasuryValueUSD)
	m.effectiveSupply.Set(snap.EffectiveSupply)
	m.dailyVolume.Set(snap.DailyVolume)
}

// ObserveRequest records one HTTP request. path should be the route
// pattern, not the raw URL.
func (m *Metrics) ObserveRequest(method, path string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
