package interpolate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewCacheCollector returns a prometheus.Collector exporting the engine's
// compiled-unit cache counters. Register it on any registry:
//
//	prometheus.MustRegister(interpolate.NewCacheCollector(engine))
func NewCacheCollector(engine *Engine) prometheus.Collector {
	return &cacheCollector{
		engine: engine,
		hits: prometheus.NewDesc(
			"interpolate_cache_hits_total",
			"Compiled-unit cache hits.",
			nil, nil,
		),
		lookups: prometheus.NewDesc(
			"interpolate_cache_lookups_total",
			"Compiled-unit cache lookups.",
			nil, nil,
		),
		evictions: prometheus.NewDesc(
			"interpolate_cache_evictions_total",
			"Compiled units evicted by the LRU policy.",
			nil, nil,
		),
		entries: prometheus.NewDesc(
			"interpolate_cache_entries",
			"Live compiled units.",
			nil, nil,
		),
	}
}

type cacheCollector struct {
	engine    *Engine
	hits      *prometheus.Desc
	lookups   *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.lookups
	ch <- c.evictions
	ch <- c.entries
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.engine.CacheStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(stats.Lookups))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Entries))
}
