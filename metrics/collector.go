// Package metrics exports chash table statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/theflywheel/chash"
)

const namespace = "chash"

// StatsSource is anything that can report table statistics. *chash.Table satisfies it.
type StatsSource interface {
	Stats() chash.Stats
}

// Collector reads a table's Stats on every scrape.
// Scrapes must not run concurrently with table mutations.
type Collector struct {
	source StatsSource

	capacity     *prometheus.Desc
	entries      *prometheus.Desc
	tombstones   *prometheus.Desc
	usedBuckets  *prometheus.Desc
	longestChain *prometheus.Desc
	loadFactor   *prometheus.Desc
	resizes      *prometheus.Desc
}

// NewCollector creates a collector labelling every metric with table=name
func NewCollector(name string, source StatsSource) *Collector {
	constLabels := prometheus.Labels{"table": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, constLabels)
	}

	return &Collector{
		source:       source,
		capacity:     desc("capacity", "Number of buckets."),
		entries:      desc("entries", "Number of live keys."),
		tombstones:   desc("tombstones", "Number of removed entries still linked in a chain."),
		usedBuckets:  desc("used_buckets", "Number of non-empty buckets."),
		longestChain: desc("longest_chain", "Length of the longest chain."),
		loadFactor:   desc("load_factor", "Live keys per bucket."),
		resizes:      desc("resizes_total", "Number of times the table doubled."),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.entries
	ch <- c.tombstones
	ch <- c.usedBuckets
	ch <- c.longestChain
	ch <- c.loadFactor
	ch <- c.resizes
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	gauge := func(desc *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
	}
	gauge(c.capacity, float64(s.Capacity))
	gauge(c.entries, float64(s.Entries))
	gauge(c.tombstones, float64(s.Tombstones))
	gauge(c.usedBuckets, float64(s.UsedBuckets))
	gauge(c.longestChain, float64(s.LongestChain))
	gauge(c.loadFactor, s.LoadFactor())

	ch <- prometheus.MustNewConstMetric(c.resizes, prometheus.CounterValue, float64(s.Resizes))
}
