package video

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	narrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "narration_outcomes_total",
		Help: "Narration attachment results",
	}, []string{"outcome"})

	synthesisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "narration_synthesis_failures_total",
		Help: "Failed synthesis attempts per voice",
	}, []string{"voice"})
)
