// Package metrics exposes the Prometheus counters and gauges a production
// embedder of sinklog would want, grounded on the teacher's
// promauto-declared package-level vectors in pkg/engine/metrics.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsEnqueued counts records successfully accepted by Log.
	RecordsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sinklog_records_enqueued_total",
		Help: "The total number of records accepted onto the queue",
	})

	// RecordsRejected counts records Log refused, by reason.
	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sinklog_records_rejected_total",
		Help: "The total number of records rejected by Log, by reason",
	}, []string{"reason"})

	// SinkDispatches counts successful sink invocations.
	SinkDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sinklog_sink_dispatches_total",
		Help: "The total number of successful sink dispatches",
	}, []string{"sink"})

	// SinkFaults counts sink invocations that returned an error or
	// panicked.
	SinkFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sinklog_sink_faults_total",
		Help: "The total number of sink faults isolated by the worker pool",
	}, []string{"sink"})

	// QueueDepth reports the number of records currently buffered.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sinklog_queue_depth",
		Help: "The current number of records buffered in the queue",
	})

	// RegisteredSinks reports the number of currently registered sinks.
	RegisteredSinks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sinklog_registered_sinks",
		Help: "The current number of registered sinks",
	})

	// DispatchLatency times how long one sink's Dispatch call takes.
	DispatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sinklog_dispatch_duration_seconds",
		Help:    "Time taken for a single sink dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})
)
