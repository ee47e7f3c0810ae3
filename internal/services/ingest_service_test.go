package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
	"github.com/suedenergie/knowledge-backend/internal/config"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
)

func newIngestService(extractor knowledge.Extractor, embedder knowledge.Embedder, store knowledge.VectorStore, policy config.IngestPolicy) *IngestService {
	return NewIngestService(
		extractor,
		knowledge.NewChunker(0, 0),
		knowledge.NewRecordBuilder(policy == config.IngestPolicyReplace),
		embedder,
		store,
		policy,
		NewMetricsService(),
		zap.NewNop(),
	)
}

func TestIngestHappyPath(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := newIngestService(extractor, embedder, store, config.IngestPolicyAppend)

	result, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "handbook.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "handbook.pdf", result.File)
	assert.Equal(t, 2, result.ChunksIndexed)
	assert.Equal(t, IngestStateStored, result.State)

	require.Len(t, store.upserted, 1)
	batch := store.upserted[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "first page", batch[0].Payload.Text)
	assert.Equal(t, 1, batch[0].Payload.Page)
	assert.Equal(t, "handbook.pdf", batch[0].Payload.Source)
	assert.Len(t, batch[0].Vector, 3)
}

func TestIngestDropsBlankPages(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{
		{Number: 1, Text: "content"},
		{Number: 2, Text: "   \n\t "},
		{Number: 3, Text: ""},
	}}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := newIngestService(extractor, embedder, store, config.IngestPolicyAppend)

	result, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "sparse.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksIndexed)
	assert.Equal(t, 1, embedder.calls)
}

func TestIngestRejectsDocumentWithNoText(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{
		{Number: 1, Text: " "},
		{Number: 2, Text: ""},
	}}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := newIngestService(extractor, embedder, store, config.IngestPolicyAppend)

	_, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "scan.pdf"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmptyContent, apperrors.KindOf(err))
	assert.Zero(t, embedder.calls)
	assert.Empty(t, store.calls)
}

func TestIngestRejectsMalformedDocumentBeforeEmbedding(t *testing.T) {
	extractor := &fakeExtractor{err: apperrors.DocumentFormat("not a parseable PDF", errors.New("bad header"))}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := newIngestService(extractor, embedder, store, config.IngestPolicyAppend)

	_, err := svc.Ingest(context.Background(), []byte("garbage"), knowledge.SourceMeta{Name: "broken.pdf"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindDocumentFormat, apperrors.KindOf(err))
	assert.Zero(t, embedder.calls)
	assert.Empty(t, store.calls)
}

func TestIngestEmbeddingFailureDiscardsWholeBatch(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{
		{Number: 1, Text: "page one"},
		{Number: 2, Text: "page two"},
		{Number: 3, Text: "page three"},
	}}
	embedder := &fakeEmbedder{failOn: 2}
	store := &fakeStore{}
	svc := newIngestService(extractor, embedder, store, config.IngestPolicyAppend)

	_, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "doc.pdf"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmbeddingProvider, apperrors.KindOf(err))
	// Nothing reaches the store when any unit fails to embed.
	assert.Empty(t, store.calls)
}

func TestIngestReplacePolicyDeletesBeforeUpsert(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{{Number: 1, Text: "v2 content"}}}
	store := &fakeStore{}
	svc := newIngestService(extractor, &fakeEmbedder{}, store, config.IngestPolicyReplace)

	_, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "handbook.pdf"})
	require.NoError(t, err)
	require.Equal(t, []string{"delete:handbook.pdf", "upsert"}, store.calls)
}

func TestIngestAppendPolicyNeverDeletes(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{{Number: 1, Text: "content"}}}
	store := &fakeStore{}
	svc := newIngestService(extractor, &fakeEmbedder{}, store, config.IngestPolicyAppend)

	_, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "handbook.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"upsert"}, store.calls)
}

func TestIngestStoreFailurePropagates(t *testing.T) {
	extractor := &fakeExtractor{pages: []knowledge.PageText{{Number: 1, Text: "content"}}}
	store := &fakeStore{upsertErr: apperrors.StoreWrite(errors.New("connection refused"))}
	svc := newIngestService(extractor, &fakeEmbedder{}, store, config.IngestPolicyAppend)

	_, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "doc.pdf"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStoreWrite, apperrors.KindOf(err))
}

func TestIngestChunksLongPages(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "abcdefghij"
	}
	extractor := &fakeExtractor{pages: []knowledge.PageText{{Number: 1, Text: long}}}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := NewIngestService(
		extractor,
		knowledge.NewChunker(200, 20),
		knowledge.NewRecordBuilder(false),
		embedder,
		store,
		config.IngestPolicyAppend,
		NewMetricsService(),
		zap.NewNop(),
	)

	result, err := svc.Ingest(context.Background(), []byte("pdf"), knowledge.SourceMeta{Name: "long.pdf"})
	require.NoError(t, err)
	assert.Greater(t, result.ChunksIndexed, 1)
	assert.Equal(t, result.ChunksIndexed, embedder.calls)
}

func TestIngestStateTransitionTable(t *testing.T) {
	assert.True(t, canTransition(IngestStateReceived, IngestStateExtracted))
	assert.True(t, canTransition(IngestStateExtracted, IngestStateBuilt))
	assert.True(t, canTransition(IngestStateBuilt, IngestStateEmbedded))
	assert.True(t, canTransition(IngestStateEmbedded, IngestStateStored))

	assert.False(t, canTransition(IngestStateReceived, IngestStateStored))
	assert.False(t, canTransition(IngestStateStored, IngestStateReceived))
	assert.False(t, canTransition(IngestStateRejected, IngestStateExtracted))
}
