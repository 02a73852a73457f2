package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwatch",
		Name:      "probes_total",
		Help:      "Storefront probes by region and outcome",
	}, []string{"region", "outcome"})

	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwatch",
		Name:      "confirmations_total",
		Help:      "Confirmation procedures by result (confirmed/rejected)",
	}, []string{"result"})

	SweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwatch",
		Name:      "sweeps_total",
		Help:      "Completed sweeps by result (ok/failed)",
	}, []string{"result"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwatch",
		Name:      "notifications_total",
		Help:      "Per-destination deliveries by channel and outcome",
	}, []string{"channel", "outcome"})

	SweepDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Namespace: "appwatch",
		Name:      "sweep_duration_seconds",
		Help:      "Time spent on one full sweep",
	})
)
