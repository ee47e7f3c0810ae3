package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// MilvusOptions configures the Milvus-backed vector store.
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	VectorSize int
	Distance   string
	Database   string
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
	distance     string
}

// NewMilvusVectorStore creates a vector store backed by the Milvus SDK.
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "suedenergie_docs"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Distance == "" {
		opts.Distance = "COSINE"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		distance:     formatMilvusDistance(opts.Distance),
	}, nil
}

func formatMilvusDistance(value string) string {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return "IP"
	case "L2", "EUCLIDEAN":
		return "L2"
	default:
		return "COSINE"
	}
}

func (s *milvusVectorStore) EnsureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return apperrors.StoreWrite(fmt.Errorf("check collection: %w", err))
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "Suedenergie knowledge base vectors",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "source",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "1024"},
			},
			{
				Name:       "modified",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:       "text",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "65535"},
			},
			{
				Name:       "vector",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(s.vectorSize)},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("create collection: %w", err))
	}

	var index entity.Index
	index, err = entity.NewIndexHNSW(entity.MetricType(s.distance), 8, 64)
	if err != nil {
		index, err = entity.NewIndexIvfFlat(entity.MetricType(s.distance), 128)
		if err != nil {
			return apperrors.StoreWrite(fmt.Errorf("create index: %w", err))
		}
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("create index: %w", err))
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("load collection: %w", err))
	}

	return nil
}

func (s *milvusVectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	sources := make([]string, 0, len(records))
	modifieds := make([]string, 0, len(records))
	pages := make([]int64, 0, len(records))
	texts := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))

	for _, rec := range records {
		if len(rec.Vector) != s.vectorSize {
			return apperrors.StoreWrite(fmt.Errorf("record %s: vector size %d does not match collection size %d",
				rec.ID, len(rec.Vector), s.vectorSize))
		}
		ids = append(ids, rec.ID)
		sources = append(sources, rec.Payload.Source)
		modifieds = append(modifieds, rec.Payload.Modified)
		pages = append(pages, int64(rec.Payload.Page))
		texts = append(texts, rec.Payload.Text)
		vectors = append(vectors, rec.Vector)
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	// One Insert call per batch keeps the write all-or-nothing.
	_, err := s.milvusClient.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnVarChar("modified", modifieds),
		entity.NewColumnInt64("page", pages),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("vector", s.vectorSize, vectors),
	)
	if err != nil {
		return apperrors.StoreWrite(fmt.Errorf("milvus insert: %w", err))
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("milvus flush: %w", err))
	}

	return nil
}

func (s *milvusVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(vector)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{"source", "modified", "page", "text"},
		[]entity.Vector{queryVector},
		"vector",
		entity.MetricType(s.distance),
		topK,
		sp,
	)
	if err != nil {
		return nil, apperrors.StoreRead(fmt.Errorf("milvus search: %w", err))
	}

	if len(searchResults) == 0 {
		return []Match{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, apperrors.StoreRead(fmt.Errorf("milvus search: %w", result.Err))
	}
	if result.ResultCount == 0 {
		return []Match{}, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var sources, modifieds, texts []string
	var pages []int64
	for _, field := range result.Fields {
		switch field.Name() {
		case "source":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				sources = val.Data()
			}
		case "modified":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				modifieds = val.Data()
			}
		case "page":
			if val, ok := field.(*entity.ColumnInt64); ok {
				pages = val.Data()
			}
		case "text":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				texts = val.Data()
			}
		}
	}

	matches := make([]Match, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		var m Match
		if i < len(ids) {
			m.ID = ids[i]
		}
		if i < len(result.Scores) {
			m.Score = float64(result.Scores[i])
		}
		if i < len(sources) {
			m.Payload.Source = sources[i]
		}
		if i < len(modifieds) {
			m.Payload.Modified = modifieds[i]
		}
		if i < len(pages) {
			m.Payload.Page = int(pages[i])
		}
		if i < len(texts) {
			m.Payload.Text = texts[i]
		}
		matches = append(matches, m)
	}

	return matches, nil
}

func (s *milvusVectorStore) DeleteBySource(ctx context.Context, source string) error {
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	expr := fmt.Sprintf("source == %q", source)
	if err := s.milvusClient.Delete(ctx, s.collection, "", expr); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("milvus delete: %w", err))
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		return apperrors.StoreWrite(fmt.Errorf("milvus flush: %w", err))
	}

	return nil
}

func (s *milvusVectorStore) Count(ctx context.Context) (int64, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	stats, err := s.milvusClient.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, apperrors.StoreRead(fmt.Errorf("milvus statistics: %w", err))
	}

	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, apperrors.StoreRead(fmt.Errorf("parse row_count: %w", err))
	}
	return count, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
