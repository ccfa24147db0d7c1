package manager

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitnetd",
			Subsystem: "model",
			Name:      "downloads_total",
			Help:      "Total number of model download attempts",
		},
		[]string{"outcome"},
	)

	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitnetd",
			Subsystem: "model",
			Name:      "uploads_total",
			Help:      "Total number of model upload attempts",
		},
		[]string{"outcome"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitnetd",
			Subsystem: "model",
			Name:      "generations_total",
			Help:      "Total number of generation attempts by engine",
		},
		[]string{"engine", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(downloadsTotal, uploadsTotal, generationsTotal)
}
