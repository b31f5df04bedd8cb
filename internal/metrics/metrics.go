// Package metrics provides Prometheus metrics for docrag.
// A nil *Metrics is valid and records nothing, so services can run without it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ingestion and chat pipelines.
type Metrics struct {
	// Ingestion metrics
	IngestRunsTotal     *prometheus.CounterVec
	IngestDuration      prometheus.Histogram
	ChunksIndexedTotal  prometheus.Counter
	DocumentsDeleted    prometheus.Counter
	ExtractionRunsTotal *prometheus.CounterVec

	// Embedding metrics
	EmbeddingBatchesTotal *prometheus.CounterVec
	EmbeddingTokensTotal  *prometheus.CounterVec
	EmbeddingCostTotal    *prometheus.CounterVec

	// Chat metrics
	ChatTurnsTotal     *prometheus.CounterVec
	RetrievalTotal     *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
}

// New creates and registers all metrics on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.IngestRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_ingest_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	m.IngestDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docrag_ingest_duration_seconds",
			Help:    "Duration of successful ingestion runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	m.ChunksIndexedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docrag_chunks_indexed_total",
			Help: "Total number of chunk points written to the vector index",
		},
	)

	m.DocumentsDeleted = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docrag_documents_deleted_total",
			Help: "Total number of deleted documents",
		},
	)

	m.ExtractionRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_extraction_runs_total",
			Help: "Total number of raw text extraction runs by outcome",
		},
		[]string{"outcome"},
	)

	m.EmbeddingBatchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_embedding_batches_total",
			Help: "Total number of upstream embedding requests",
		},
		[]string{"model", "status"},
	)

	m.EmbeddingTokensTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_embedding_tokens_total",
			Help: "Total number of tokens sent for embedding",
		},
		[]string{"model"},
	)

	m.EmbeddingCostTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_embedding_cost_usd_total",
			Help: "Estimated embedding spend in USD",
		},
		[]string{"model"},
	)

	m.ChatTurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_chat_turns_total",
			Help: "Total number of chat turns by outcome",
		},
		[]string{"outcome"},
	)

	m.RetrievalTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrag_retrieval_total",
			Help: "Retrieval attempts during chat turns by result",
		},
		[]string{"result"},
	)

	m.CompletionDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docrag_completion_duration_seconds",
			Help:    "Duration of chat completion calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	return m
}

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RecordIngest records one ingestion run.
func (m *Metrics) RecordIngest(err error, chunks int, d time.Duration) {
	if m == nil {
		return
	}
	if err != nil {
		m.IngestRunsTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.IngestRunsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.IngestDuration.Observe(d.Seconds())
	m.ChunksIndexedTotal.Add(float64(chunks))
}

// RecordExtraction records one text extraction run.
func (m *Metrics) RecordExtraction(err error) {
	if m == nil {
		return
	}
	m.ExtractionRunsTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordDocumentDeleted counts a deleted document.
func (m *Metrics) RecordDocumentDeleted() {
	if m == nil {
		return
	}
	m.DocumentsDeleted.Inc()
}

// RecordEmbeddingBatch records one upstream embedding request.
func (m *Metrics) RecordEmbeddingBatch(model string, tokens int, cost float64, err error) {
	if m == nil {
		return
	}
	m.EmbeddingBatchesTotal.WithLabelValues(model, outcome(err)).Inc()
	if err != nil {
		return
	}
	m.EmbeddingTokensTotal.WithLabelValues(model).Add(float64(tokens))
	m.EmbeddingCostTotal.WithLabelValues(model).Add(cost)
}

// RecordRetrieval records a retrieval result label: hits, empty, failed or skipped.
func (m *Metrics) RecordRetrieval(result string) {
	if m == nil {
		return
	}
	m.RetrievalTotal.WithLabelValues(result).Inc()
}

// RecordChatTurn records one chat turn.
func (m *Metrics) RecordChatTurn(err error) {
	if m == nil {
		return
	}
	m.ChatTurnsTotal.WithLabelValues(outcome(err)).Inc()
}

// ObserveCompletion records a completion call duration.
func (m *Metrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.CompletionDuration.Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
