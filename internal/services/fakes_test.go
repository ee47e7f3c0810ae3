package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
	"github.com/suedenergie/knowledge-backend/internal/drive"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
)

// fakeExtractor returns canned pages or a format error.
type fakeExtractor struct {
	pages []knowledge.PageText
	err   error
}

func (f *fakeExtractor) Extract(data []byte) ([]knowledge.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// fakeEmbedder records inputs and can fail on the nth call.
type fakeEmbedder struct {
	dims    int
	failOn  int // 1-based call number that fails; 0 never fails
	calls   int
	inputs  []string
	offline bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	f.inputs = append(f.inputs, text)
	if f.failOn > 0 && f.calls == f.failOn {
		return nil, apperrors.EmbeddingProvider(errors.New("rate limited"))
	}
	dims := f.dims
	if dims == 0 {
		dims = 3
	}
	return make([]float32, dims), nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Ready() bool     { return !f.offline }

// fakeStore records calls in order so tests can assert sequencing.
type fakeStore struct {
	calls     []string
	upserted  [][]knowledge.Record
	deleted   []string
	matches   []knowledge.Match
	searchErr error
	upsertErr error
	deleteErr error
	count     int64
}

func (f *fakeStore) EnsureCollection(ctx context.Context) error {
	f.calls = append(f.calls, "ensure")
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, records []knowledge.Record) error {
	f.calls = append(f.calls, "upsert")
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, records)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, topK int) ([]knowledge.Match, error) {
	f.calls = append(f.calls, fmt.Sprintf("search:%d", topK))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeStore) DeleteBySource(ctx context.Context, source string) error {
	f.calls = append(f.calls, "delete:"+source)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, source)
	return nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) {
	f.calls = append(f.calls, "count")
	return f.count, nil
}

func (f *fakeStore) Ready() bool { return true }

// fakeGenerator captures the question and context it was handed.
type fakeGenerator struct {
	answer      string
	err         error
	gotQuestion string
	gotContext  string
}

func (f *fakeGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	f.gotQuestion = question
	f.gotContext = contextText
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) Ready() bool { return true }

// fakeSource serves an in-memory file listing for sync tests.
type fakeSource struct {
	files       []drive.File
	content     map[string][]byte
	listErr     error
	downloadErr map[string]error
	downloads   []string
}

func (f *fakeSource) ListPDFs(ctx context.Context) ([]drive.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	f.downloads = append(f.downloads, fileID)
	if err := f.downloadErr[fileID]; err != nil {
		return nil, err
	}
	return f.content[fileID], nil
}

// fakeIngestor counts successful ingests per source name.
type fakeIngestor struct {
	ingested []string
	failFor  map[string]error
}

func (f *fakeIngestor) Ingest(ctx context.Context, data []byte, meta knowledge.SourceMeta) (*IngestResult, error) {
	if err := f.failFor[meta.Name]; err != nil {
		return nil, err
	}
	f.ingested = append(f.ingested, meta.Name)
	return &IngestResult{File: meta.Name, ChunksIndexed: 1, State: IngestStateStored}, nil
}
