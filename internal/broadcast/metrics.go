package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worldcell_tick_duration_seconds",
		Help:    "Wall-clock duration of one simulation tick.",
		Buckets: prometheus.DefBuckets,
	})
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worldcell_connected_clients",
		Help: "Number of currently connected broadcast WebSocket clients.",
	})
	ruleErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worldcell_rule_errors_total",
		Help: "Count of per-cell rule evaluation errors across all ticks.",
	})
	cascadedPhasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worldcell_cascaded_phases_total",
		Help: "Count of phases that exceeded the 10% error-rate cascade threshold.",
	})
)

// RecordTick updates the tick-level metrics after one tick completes.
func RecordTick(durationSeconds float64, ruleErrors int, cascadedPhases int) {
	tickDurationSeconds.Observe(durationSeconds)
	ruleErrorsTotal.Add(float64(ruleErrors))
	cascadedPhasesTotal.Add(float64(cascadedPhases))
}
