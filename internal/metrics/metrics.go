package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvoicesProcessed counts processed invoices by resolved energy decision
	// and outcome (ok, mode_error, extraction_error, internal_error).
	InvoicesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_processed_total",
		Help: "Processed invoices by energy decision and outcome.",
	}, []string{"decision", "outcome"})

	// ProcessingDuration observes end-to-end processing time in seconds.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoice_processing_duration_seconds",
		Help:    "End-to-end invoice processing duration.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// ExtractionDuration observes the AI extraction step alone.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoice_extraction_duration_seconds",
		Help:    "AI extraction duration.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// DecisionLabel flattens the classifier decision for the counter label.
func DecisionLabel(energies []string) string {
	switch len(energies) {
	case 0:
		return "none"
	case 1:
		return energies[0]
	default:
		return "dual"
	}
}
