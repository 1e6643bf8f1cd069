// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider struct {
	reg *prometheus.Registry

	MatchTotal      *prometheus.CounterVec
	MatchRatio      prometheus.Histogram
	CorridorGaps    *prometheus.GaugeVec
	RebuildDuration prometheus.Histogram
}

func Init() *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &Provider{
		reg: reg,
		MatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corridor_match_total",
				Help: "Event match attempts by result source.",
			},
			[]string{"source"},
		),
		MatchRatio: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "corridor_match_ratio",
				Help:    "Matched path length over straight-line distance.",
				Buckets: []float64{1, 1.1, 1.25, 1.5, 2, 3, 5},
			},
		),
		CorridorGaps: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corridor_gaps",
				Help: "Recorded coverage gaps per corridor.",
			},
			[]string{"corridor"},
		),
		RebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "corridor_rebuild_duration_seconds",
				Help:    "Time taken to rebuild one route's corridors.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(p.MatchTotal, p.MatchRatio, p.CorridorGaps, p.RebuildDuration)
	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
