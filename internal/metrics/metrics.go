// Package metrics содержит метрики Prometheus движка подгрузки лент.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics объединяет коллекторы движка. Nil *Metrics допустим и ничего не записывает.
type Metrics struct {
	// FetchTotal считает классифицированные циклы загрузки.
	FetchTotal *prometheus.CounterVec
	// FetchDuration измеряет цикл от выдачи разрешения до классификации.
	FetchDuration *prometheus.HistogramVec
	// CacheLookups считает обращения к кэшу по результату.
	CacheLookups *prometheus.CounterVec
	// Denied считает события приближения, отвергнутые защитой.
	Denied *prometheus.CounterVec
}

// New создает коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feedloader",
				Name:      "fetch_total",
				Help:      "Total number of page fetch cycles by outcome",
			},
			[]string{"kind", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "feedloader",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of page fetch cycles in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feedloader",
				Name:      "cache_lookups_total",
				Help:      "Total number of cache-first lookups by result",
			},
			[]string{"result"},
		),
		Denied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feedloader",
				Name:      "approach_denied_total",
				Help:      "Approach events ignored because a fetch was in flight or the feed was exhausted",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.FetchTotal, m.FetchDuration, m.CacheLookups, m.Denied)
	return m
}

// RecordFetch учитывает завершенный цикл загрузки.
func (m *Metrics) RecordFetch(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheLookup учитывает попадание или промах кэша.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordDenied учитывает отвергнутое событие приближения.
func (m *Metrics) RecordDenied(kind string) {
	if m == nil {
		return
	}
	m.Denied.WithLabelValues(kind).Inc()
}
