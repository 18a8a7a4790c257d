// Package metrics holds the Prometheus instrumentation for the render
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RendersTotal counts render requests by output format and outcome.
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itingen",
		Name:      "renders_total",
		Help:      "Number of itinerary renders by format and status",
	}, []string{"format", "status"})

	// PDFConvertSeconds observes the duration of a single PDF conversion
	// attempt, successful or not.
	PDFConvertSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "itingen",
		Name:      "pdf_convert_seconds",
		Help:      "Time spent converting rendered HTML to PDF",
		Buckets:   prometheus.DefBuckets,
	})

	// RecordWarningsTotal counts input records skipped during formatting.
	RecordWarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "itingen",
		Name:      "record_warnings_total",
		Help:      "Number of malformed trip records skipped with a warning",
	})
)

func init() {
	prometheus.MustRegister(RendersTotal, PDFConvertSeconds, RecordWarningsTotal)
}

// Handler exposes the default registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
