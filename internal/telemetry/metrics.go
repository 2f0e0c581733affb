package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the bot's Prometheus instruments.
type Metrics struct {
	TradesTotal    *prometheus.CounterVec
	TradeAmountUSD *prometheus.CounterVec
	CycleDuration  prometheus.Histogram
	CyclesTotal    prometheus.Counter
	FeedErrors     *prometheus.CounterVec
	AssetsDue      prometheus.Gauge
	LastCycleTime  prometheus.Gauge
}

// New registers the bot's metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TradesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dca_trades_total",
			Help: "Terminal trade outcomes by asset and status.",
		}, []string{"asset", "status"}),
		TradeAmountUSD: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dca_trade_amount_usd_total",
			Help: "Cumulative USD notional of filled trades by asset.",
		}, []string{"asset"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dca_cycle_duration_seconds",
			Help:    "Wall time of one scheduler cycle.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dca_cycles_total",
			Help: "Completed scheduler cycles.",
		}),
		FeedErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dca_feed_errors_total",
			Help: "Price feed failures by source.",
		}, []string{"source"}),
		AssetsDue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dca_assets_due",
			Help: "Assets found due in the most recent cycle.",
		}),
		LastCycleTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dca_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle.",
		}),
	}
}

// ObserveCycle records one completed cycle.
func (m *Metrics) ObserveCycle(start time.Time, due int) {
	m.CycleDuration.Observe(time.Since(start).Seconds())
	m.CyclesTotal.Inc()
	m.AssetsDue.Set(float64(due))
	m.LastCycleTime.SetToCurrentTime()
}

// Serve exposes /metrics on addr. It blocks until the server stops.
func Serve(addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("metrics server listening")
	return http.ListenAndServe(addr, mux)
}
