package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	generationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockctm",
		Subsystem: "registry",
		Name:      "generation",
		Help:      "Generation of the published snapshot.",
	})

	blocksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockctm",
		Subsystem: "registry",
		Name:      "blocks",
		Help:      "Block types in the published snapshot.",
	})

	reloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockctm",
		Subsystem: "registry",
		Name:      "reloads_total",
		Help:      "Reload attempts by outcome.",
	}, []string{"result"})

	skippedBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockctm",
		Subsystem: "registry",
		Name:      "skipped_blocks_total",
		Help:      "Block types left out of a snapshot because they failed to load or bake.",
	})

	reloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blockctm",
		Subsystem: "registry",
		Name:      "reload_duration_seconds",
		Help:      "Time spent in Reload.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// RegisterMetrics registers the registry collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{generationGauge, blocksGauge, reloads, skippedBlocks, reloadDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
