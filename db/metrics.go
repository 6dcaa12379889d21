package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "state_store_fetches_total",
		Help: "Remote state database fetches by result (ok, missing, failed, kept)",
	}, []string{"result"})
	publishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "state_store_publishes_total",
		Help: "Full state database uploads by result. Failed ones are local commits missing remotely",
	}, []string{"result"})
	publishSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "state_store_publish_seconds",
		Help:    "Time to upload the full state database",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	concurrentWriters = promauto.NewCounter(prometheus.CounterOpts{
		Name: "state_store_concurrent_writers_total",
		Help: "Times two live requests wrote the same product",
	})
)
