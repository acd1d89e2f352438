package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowgate_executions_total",
			Help: "Total workflow executions by attempt path and outcome",
		},
		[]string{"attempt", "outcome"},
	)

	provisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowgate_provisions_total",
			Help: "Total workflow provisioning sequences by outcome",
		},
		[]string{"outcome"},
	)
)
