package metrics

import "github.com/prometheus/client_golang/prometheus"

// DBPoolStatFunc reports session-store pool statistics without importing pgxpool.
type DBPoolStatFunc func() (total, idle, acquired int32)

// poolCollector exposes enclave_db_pool_conns with one series per state.
type poolCollector struct {
	stats DBPoolStatFunc
	conns *prometheus.Desc
}

func NewDBPoolCollector(stats DBPoolStatFunc) prometheus.Collector {
	return &poolCollector{
		stats: stats,
		conns: prometheus.NewDesc(
			"enclave_db_pool_conns",
			"Session store pool connections by state (total, idle, acquired).",
			[]string{"state"}, nil,
		),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.conns
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	total, idle, acquired := c.stats()
	for state, v := range map[string]int32{"total": total, "idle": idle, "acquired": acquired} {
		ch <- prometheus.MustNewConstMetric(c.conns, prometheus.GaugeValue, float64(v), state)
	}
}
