package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewRegistry creates a private Prometheus registry with the plansched
// metrics registered on it, so every command run starts from zero.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
