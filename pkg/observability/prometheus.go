package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks exports search, learning and cache events as Prometheus
// metrics. It implements [SearchHooks], [LearnHooks] and [CacheHooks].
type PrometheusHooks struct {
	searches       *prometheus.CounterVec
	iterations     *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	finalScore     *prometheus.GaugeVec
	learnRuns      *prometheus.CounterVec
	learnDuration  *prometheus.HistogramVec
	cacheEvents    *prometheus.CounterVec
	cacheBytes     prometheus.Counter
}

// NewPrometheusHooks registers the collectors with reg. Passing a fresh
// registry keeps tests isolated from the default one.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mctbnc_searches_total",
			Help: "Structure searches started by algorithm",
		}, []string{"algorithm"}),
		iterations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mctbnc_search_iterations_total",
			Help: "Committed search moves by algorithm",
		}, []string{"algorithm"}),
		searchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mctbnc_search_duration_seconds",
			Help:    "Structure search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"algorithm"}),
		finalScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mctbnc_search_final_score",
			Help: "Score of the last completed search by algorithm",
		}, []string{"algorithm"}),
		learnRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mctbnc_learn_runs_total",
			Help: "Learning runs by model and result",
		}, []string{"model", "result"}),
		learnDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mctbnc_learn_duration_seconds",
			Help:    "Learning run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"model"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mctbnc_cache_events_total",
			Help: "Model cache events by key type and outcome",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "mctbnc_cache_written_bytes_total",
			Help: "Bytes written to the model cache",
		}),
	}
}

func (p *PrometheusHooks) OnSearchStart(_ context.Context, algorithm string, _ int) {
	p.searches.WithLabelValues(algorithm).Inc()
}

func (p *PrometheusHooks) OnIteration(_ context.Context, algorithm string, _ int, _ float64) {
	p.iterations.WithLabelValues(algorithm).Inc()
}

func (p *PrometheusHooks) OnSearchComplete(_ context.Context, algorithm string, _ int, score float64, d time.Duration) {
	p.searchDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	p.finalScore.WithLabelValues(algorithm).Set(score)
}

func (p *PrometheusHooks) OnLearnStart(context.Context, string, int) {}

func (p *PrometheusHooks) OnLearnComplete(_ context.Context, model string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.learnRuns.WithLabelValues(model, result).Inc()
	p.learnDuration.WithLabelValues(model).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}
