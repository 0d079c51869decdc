package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codelab",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of AI grading requests",
		Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider", "model"})

	gradingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codelab",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of AI grading failures",
	}, []string{"provider", "model"})
)

func recordFailure(span trace.Span, provider, model string, err error) {
	gradingFailures.WithLabelValues(provider, model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
