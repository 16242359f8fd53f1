package variant

import "github.com/prometheus/client_golang/prometheus"

var (
	selections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockctm",
		Subsystem: "variant",
		Name:      "selections_total",
		Help:      "Model selections by table, split by whether the state was already memoized.",
	}, []string{"table", "result"})

	fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockctm",
		Subsystem: "variant",
		Name:      "fallbacks_total",
		Help:      "States with no alternate variant that fell back to the default model.",
	}, []string{"table"})

	bakes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockctm",
		Subsystem: "variant",
		Name:      "bakes_total",
		Help:      "Models baked by table.",
	}, []string{"table"})
)

// RegisterMetrics registers the variant collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{selections, fallbacks, bakes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// tableMetrics holds a table's counters, curried once so selection does not
// allocate.
type tableMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	fallbacks prometheus.Counter
	bakes     prometheus.Counter
}

func newTableMetrics(table string) tableMetrics {
	return tableMetrics{
		hits:      selections.WithLabelValues(table, "hit"),
		misses:    selections.WithLabelValues(table, "miss"),
		fallbacks: fallbacks.WithLabelValues(table),
		bakes:     bakes.WithLabelValues(table),
	}
}
