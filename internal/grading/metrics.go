package grading

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codelab",
		Subsystem: "grading",
		Name:      "queue_depth",
		Help:      "Number of submissions waiting for AI grading",
	})

	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codelab",
		Subsystem: "grading",
		Name:      "jobs_total",
		Help:      "Grading jobs processed by outcome",
	}, []string{"outcome"})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "codelab",
		Subsystem: "grading",
		Name:      "job_duration_seconds",
		Help:      "Time spent grading a single submission, excluding the rate limit delay",
		Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
	})
)
