package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the prometheus registry and the pipeline counters.
// It carries its own registry so tests can build isolated instances.
type MetricsService struct {
	registry *prometheus.Registry

	documentsIngested prometheus.Counter
	chunksIndexed     prometheus.Counter
	chatRequests      prometheus.Counter
	syncRuns          prometheus.Counter
	providerErrors    prometheus.Counter
}

func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		documentsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledge_documents_ingested_total",
			Help: "Documents successfully indexed.",
		}),
		chunksIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledge_chunks_indexed_total",
			Help: "Indexable records written to the vector store.",
		}),
		chatRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledge_chat_requests_total",
			Help: "Chat requests accepted for processing.",
		}),
		syncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledge_sync_runs_total",
			Help: "Completed drive sync passes.",
		}),
		providerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledge_provider_errors_total",
			Help: "Failed embedding or generation provider calls.",
		}),
	}

	registry.MustRegister(
		s.documentsIngested,
		s.chunksIndexed,
		s.chatRequests,
		s.syncRuns,
		s.providerErrors,
	)
	return s
}

// Handler exposes the registry in the prometheus text format.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *MetricsService) DocumentIngested(chunks int) {
	s.documentsIngested.Inc()
	s.chunksIndexed.Add(float64(chunks))
}

func (s *MetricsService) ChatRequest() {
	s.chatRequests.Inc()
}

func (s *MetricsService) SyncRun() {
	s.syncRuns.Inc()
}

func (s *MetricsService) ProviderError() {
	s.providerErrors.Inc()
}
