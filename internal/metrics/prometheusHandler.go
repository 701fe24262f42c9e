package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var ingestedChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingested_chunks_total",
	Help: "Number of chunks written to the vector index",
})

var ingestedDocumentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingested_documents_total",
	Help: "Documents processed during ingestion, by outcome",
}, []string{"outcome"})

var fallbackExtractionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fallback_extractions_total",
	Help: "Structured extractions that fell back to the regex engine",
})

var extractedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "extracted_records_total",
	Help: "Structured records produced, by category",
}, []string{"category"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of pipeline stages and external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"stage"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(stage string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(stage).Observe(timeElapsed.Seconds())
}

func AddIngestedChunks(count int) {
	ingestedChunksTotal.Add(float64(count))
}

func CountIngestedDocument(outcome string) {
	ingestedDocumentsTotal.WithLabelValues(outcome).Inc()
}

func CountFallbackExtraction() {
	fallbackExtractionsTotal.Inc()
}

func AddExtractedRecords(category string, count int) {
	extractedRecordsTotal.WithLabelValues(category).Add(float64(count))
}
