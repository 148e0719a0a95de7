package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the assembly/extraction pipeline, exposed on /metrics.
var (
	DocumentsAssembled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_documents_assembled_total",
		Help: "Documents successfully assembled.",
	})
	PagesEmbedded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_pages_embedded_total",
		Help: "Pages embedded into assembled documents.",
	})
	PagesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_pages_skipped_total",
		Help: "Assembly pages skipped because the asset was missing or unreadable.",
	})
	ExtractionSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_extraction_submissions_total",
		Help: "Page submissions sent to the extraction service.",
	})
	ExtractionFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_extraction_failures_total",
		Help: "Page submissions that failed and were dropped.",
	})
	SearchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebind_search_errors_total",
		Help: "Search requests that failed against the extraction service.",
	})
)
