package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
	"github.com/suedenergie/knowledge-backend/internal/config"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
)

// IngestState is the stage an ingestion request has reached.
type IngestState string

const (
	IngestStateReceived  IngestState = "RECEIVED"
	IngestStateExtracted IngestState = "EXTRACTED"
	IngestStateBuilt     IngestState = "BUILT"
	IngestStateEmbedded  IngestState = "EMBEDDED"
	IngestStateStored    IngestState = "STORED"
	IngestStateRejected  IngestState = "REJECTED"
	IngestStateFailed    IngestState = "FAILED"
)

// ingestTransitions is the allowed state graph. REJECTED is reachable from
// every validation gate, FAILED from every provider/store call.
var ingestTransitions = map[IngestState][]IngestState{
	IngestStateReceived:  {IngestStateExtracted, IngestStateRejected},
	IngestStateExtracted: {IngestStateBuilt, IngestStateRejected},
	IngestStateBuilt:     {IngestStateEmbedded, IngestStateFailed},
	IngestStateEmbedded:  {IngestStateStored, IngestStateFailed},
}

func canTransition(from, to IngestState) bool {
	for _, next := range ingestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IngestResult reports a completed ingestion back to the caller.
type IngestResult struct {
	File          string      `json:"file"`
	ChunksIndexed int         `json:"chunks_indexed"`
	State         IngestState `json:"-"`
}

// IngestService drives one document through extract, build, embed and store.
type IngestService struct {
	extractor knowledge.Extractor
	chunker   *knowledge.Chunker
	builder   *knowledge.RecordBuilder
	embedder  knowledge.Embedder
	store     knowledge.VectorStore
	policy    config.IngestPolicy
	metrics   *MetricsService
	logger    *zap.Logger
}

func NewIngestService(
	extractor knowledge.Extractor,
	chunker *knowledge.Chunker,
	builder *knowledge.RecordBuilder,
	embedder knowledge.Embedder,
	store knowledge.VectorStore,
	policy config.IngestPolicy,
	metrics *MetricsService,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		builder:   builder,
		embedder:  embedder,
		store:     store,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
	}
}

// Ingest processes one document. Text units are embedded one by one so a
// provider failure is attributable to a page, but the store write is a single
// batch per document: a cancelled or failed request leaves nothing behind.
func (s *IngestService) Ingest(ctx context.Context, data []byte, meta knowledge.SourceMeta) (*IngestResult, error) {
	state := IngestStateReceived

	pages, err := s.extractor.Extract(data)
	if err != nil {
		s.fail(&state, IngestStateRejected, meta.Name, err)
		return nil, err
	}
	s.advance(&state, IngestStateExtracted, meta.Name)

	// Build records page by page; blank units are dropped here and never
	// reach the store.
	var records []knowledge.Record
	for _, page := range pages {
		for _, chunk := range s.chunker.Split(page.Text) {
			records = append(records, s.builder.Build(chunk.Text, page.Number, chunk.Index, meta))
		}
	}
	if len(records) == 0 {
		err := apperrors.EmptyContent("document contains no extractable text")
		s.fail(&state, IngestStateRejected, meta.Name, err)
		return nil, err
	}
	s.advance(&state, IngestStateBuilt, meta.Name)

	if !s.embedder.Ready() {
		s.logger.Warn("embedding provider not configured, indexing zero vectors",
			zap.String("file", meta.Name))
	}
	for i := range records {
		vector, err := s.embedder.Embed(ctx, records[i].Payload.Text)
		if err != nil {
			s.fail(&state, IngestStateFailed, meta.Name, err)
			s.countProviderError()
			return nil, err
		}
		records[i].Vector = vector
	}
	s.advance(&state, IngestStateEmbedded, meta.Name)

	if s.policy == config.IngestPolicyReplace {
		if err := s.store.DeleteBySource(ctx, meta.Name); err != nil {
			s.fail(&state, IngestStateFailed, meta.Name, err)
			return nil, err
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		s.fail(&state, IngestStateFailed, meta.Name, err)
		return nil, err
	}
	s.advance(&state, IngestStateStored, meta.Name)

	if s.metrics != nil {
		s.metrics.DocumentIngested(len(records))
	}
	s.logger.Info("document indexed",
		zap.String("file", meta.Name),
		zap.Int("chunks", len(records)))

	return &IngestResult{
		File:          meta.Name,
		ChunksIndexed: len(records),
		State:         IngestStateStored,
	}, nil
}

func (s *IngestService) advance(state *IngestState, to IngestState, file string) {
	if !canTransition(*state, to) {
		s.logger.Error("invalid ingest state transition",
			zap.String("from", string(*state)),
			zap.String("to", string(to)),
			zap.String("file", file))
		return
	}
	s.logger.Debug("ingest state",
		zap.String("from", string(*state)),
		zap.String("to", string(to)),
		zap.String("file", file))
	*state = to
}

func (s *IngestService) fail(state *IngestState, to IngestState, file string, err error) {
	*state = to
	s.logger.Warn("ingest stopped",
		zap.String("state", string(to)),
		zap.String("file", file),
		zap.Error(err))
}

func (s *IngestService) countProviderError() {
	if s.metrics != nil {
		s.metrics.ProviderError()
	}
}
