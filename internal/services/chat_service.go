package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
)

// ChatService answers a question from the indexed knowledge base: embed the
// query, retrieve the top-K passages, assemble them into one context blob and
// hand everything to the generator.
type ChatService struct {
	embedder  knowledge.Embedder
	store     knowledge.VectorStore
	generator knowledge.Generator
	topK      int
	metrics   *MetricsService
	logger    *zap.Logger
}

func NewChatService(
	embedder knowledge.Embedder,
	store knowledge.VectorStore,
	generator knowledge.Generator,
	topK int,
	metrics *MetricsService,
	logger *zap.Logger,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		metrics:   metrics,
		logger:    logger,
	}
}

// Chat validates the query before any network call and returns the raw
// answer text.
func (s *ChatService) Chat(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperrors.EmptyQuery("query must not be empty")
	}

	if s.metrics != nil {
		s.metrics.ChatRequest()
	}
	if !s.embedder.Ready() {
		s.logger.Warn("embedding provider not configured, retrieval results are not meaningful")
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderError()
		}
		return "", err
	}

	matches, err := s.store.Search(ctx, vector, s.topK)
	if err != nil {
		return "", err
	}

	contextText := knowledge.AssembleContext(matches)
	if contextText == "" {
		s.logger.Debug("no context retrieved for query")
	}

	answer, err := s.generator.Generate(ctx, query, contextText)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderError()
		}
		return "", err
	}

	return answer, nil
}
