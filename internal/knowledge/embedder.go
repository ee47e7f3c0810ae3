package knowledge

import (
	"context"
	"errors"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// ZeroEmbedder is the degraded-mode variant used when no provider key is
// configured. It returns a zero vector of the configured dimensionality so
// the ingest and chat paths stay alive; retrieval quality is meaningless and
// callers must log a visible warning.
type ZeroEmbedder struct {
	dimensions int
}

func NewZeroEmbedder(dimensions int) *ZeroEmbedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &ZeroEmbedder{dimensions: dimensions}
}

func (z *ZeroEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, z.dimensions), nil
}

func (z *ZeroEmbedder) Dimensions() int {
	return z.dimensions
}

func (z *ZeroEmbedder) Ready() bool {
	return false
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	limiter    sync.Mutex
}

// NewOpenAIEmbedder selects the configured or the degraded variant once at
// construction time: a blank API key yields a ZeroEmbedder.
func NewOpenAIEmbedder(apiKey, model string) Embedder {
	apiKey = strings.TrimSpace(apiKey)
	if model == "" {
		model = "text-embedding-3-small"
	}
	dims, ok := embeddingDimensions[model]
	if !ok {
		dims = 1536
	}

	if apiKey == "" {
		return NewZeroEmbedder(dims)
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dims,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmbeddingProvider(errors.New("text is empty"))
	}

	e.limiter.Lock()
	defer e.limiter.Unlock()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, apperrors.EmbeddingProvider(err)
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.EmbeddingProvider(errors.New("embedding response empty"))
	}

	embedding := resp.Data[0].Embedding
	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Ready() bool {
	return e.client != nil
}
