// Package metrics exposes optional Prometheus counters/gauges for the
// engine. The engine never binds an HTTP port itself; it just registers
// against a Registry the host process can choose to serve.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the metrics synccore updates as it runs.
type Collectors struct {
	BytesCopiedTotal  prometheus.Counter
	FilesCopiedTotal  prometheus.Counter
	FilesFailedTotal  prometheus.Counter
	ActiveTransfers   prometheus.Gauge
	VolumeEventsTotal *prometheus.CounterVec
}

// New creates and registers a fresh set of collectors against reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		BytesCopiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synccore",
			Name:      "bytes_copied_total",
			Help:      "Total bytes copied across all transfers.",
		}),
		FilesCopiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synccore",
			Name:      "files_copied_total",
			Help:      "Total files successfully copied.",
		}),
		FilesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synccore",
			Name:      "files_failed_total",
			Help:      "Total files that failed to copy.",
		}),
		ActiveTransfers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "synccore",
			Name:      "active_transfers",
			Help:      "Number of transfers currently in progress.",
		}),
		VolumeEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "synccore",
			Name:      "volume_events_total",
			Help:      "Volume watcher events by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(c.BytesCopiedTotal, c.FilesCopiedTotal, c.FilesFailedTotal, c.ActiveTransfers, c.VolumeEventsTotal)
	}
	return c
}
