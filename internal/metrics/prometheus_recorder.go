package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	pageDuration      *prom.HistogramVec
	buildDuration     prom.Histogram
	pageResults       *prom.CounterVec
	buildOutcome      *prom.CounterVec
	renderConcurrency prom.Gauge
	autolinks         prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.pageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "flashdoc",
			Name:      "page_render_duration_seconds",
			Help:      "Duration of individual page renders",
			Buckets:   prom.DefBuckets,
		}, []string{"category"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "flashdoc",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flashdoc",
			Name:      "page_results_total",
			Help:      "Page render counts by outcome",
		}, []string{"category", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flashdoc",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.renderConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: "flashdoc",
			Name:      "render_concurrency",
			Help:      "Configured render worker count for the last build",
		})
		pr.autolinks = prom.NewCounter(prom.CounterOpts{
			Namespace: "flashdoc",
			Name:      "autolink_replacements_total",
			Help:      "Prose words rewritten into entity links",
		})
		reg.MustRegister(pr.pageDuration, pr.buildDuration, pr.pageResults, pr.buildOutcome, pr.renderConcurrency, pr.autolinks)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(category string, d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.WithLabelValues(category).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(category string, result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(category, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetRenderConcurrency(n int) {
	if p == nil || p.renderConcurrency == nil {
		return
	}
	p.renderConcurrency.Set(float64(n))
}

func (p *PrometheusRecorder) AddAutolinkReplacements(n int) {
	if p == nil || p.autolinks == nil || n <= 0 {
		return
	}
	p.autolinks.Add(float64(n))
}
