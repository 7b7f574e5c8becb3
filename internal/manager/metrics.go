package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "generations_total",
			Help:      "Total finished generations by stop reason",
		},
		[]string{"stop_reason"},
	)

	generatedTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "generated_tokens_total",
			Help:      "Total tokens produced by generation streams",
		},
	)

	loadsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "loads_total",
			Help:      "Total session preloads",
		},
	)

	evictionsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "evictions_total",
			Help:      "Total idle session evictions",
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generatedTokensTotal, loadsCounter, evictionsCounter)
}
