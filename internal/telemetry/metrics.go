package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StepsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchflow",
		Name:      "flow_steps_total",
		Help:      "Flow steps executed, by flow, step and outcome.",
	}, []string{"flow", "step", "outcome"})

	RowsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchflow",
		Name:      "prepare_rows_total",
		Help:      "Match rows read by the preprocessing runner.",
	})

	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchflow",
		Name:      "sink_rows_total",
		Help:      "Partition rows pushed to sinks.",
	}, []string{"sink", "partition"})

	RowsTransformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchflow",
		Name:      "transform_rows_total",
		Help:      "Records transformed by the serving endpoint, by outcome.",
	}, []string{"outcome"})
)

// Expose serves /metrics on addr in the background.
func Expose(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
