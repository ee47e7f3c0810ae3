package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/config"
	"github.com/suedenergie/knowledge-backend/internal/drive"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
	"github.com/suedenergie/knowledge-backend/internal/logger"
	"github.com/suedenergie/knowledge-backend/internal/services"
)

// RegisterProviders wires every service the application needs. All objects
// are constructed once and reused; nothing is created at import time.
func RegisterProviders(container *dig.Container) error {
	providers := []interface{}{
		func() (*config.Config, error) {
			cfg := config.GetAppConfig()
			if cfg == nil {
				return nil, fmt.Errorf("config not loaded")
			}
			return cfg, nil
		},
		func() *zap.Logger {
			return logger.GetLogger()
		},
		func() knowledge.Extractor {
			return knowledge.NewPDFExtractor()
		},
		func(cfg *config.Config) *knowledge.Chunker {
			return knowledge.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
		},
		func(cfg *config.Config) *knowledge.RecordBuilder {
			return knowledge.NewRecordBuilder(cfg.Knowledge.IngestPolicy == config.IngestPolicyReplace)
		},
		func(cfg *config.Config, log *zap.Logger) knowledge.Embedder {
			embedder := knowledge.NewOpenAIEmbedder(cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel)
			if !embedder.Ready() {
				log.Warn("no embedding credentials configured, running in degraded mode")
			}
			return embedder
		},
		func(cfg *config.Config, log *zap.Logger) knowledge.Generator {
			generator := knowledge.NewOpenAIGenerator(cfg.AI.OpenAIAPIKey, cfg.AI.ChatModel)
			if !generator.Ready() {
				log.Warn("no generation credentials configured, running in degraded mode")
			}
			return generator
		},
		NewVectorStore,
		NewDocumentSource,
		services.NewMetricsService,
		func(
			extractor knowledge.Extractor,
			chunker *knowledge.Chunker,
			builder *knowledge.RecordBuilder,
			embedder knowledge.Embedder,
			store knowledge.VectorStore,
			cfg *config.Config,
			metrics *services.MetricsService,
			log *zap.Logger,
		) *services.IngestService {
			return services.NewIngestService(extractor, chunker, builder, embedder, store,
				cfg.Knowledge.IngestPolicy, metrics, log)
		},
		func(
			embedder knowledge.Embedder,
			store knowledge.VectorStore,
			generator knowledge.Generator,
			cfg *config.Config,
			metrics *services.MetricsService,
			log *zap.Logger,
		) *services.ChatService {
			return services.NewChatService(embedder, store, generator, cfg.Knowledge.TopK, metrics, log)
		},
		func(
			source services.DocumentSource,
			ingestor *services.IngestService,
			cfg *config.Config,
			metrics *services.MetricsService,
			log *zap.Logger,
		) *services.SyncService {
			interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
			return services.NewSyncService(source, ingestor, interval, metrics, log)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

// NewVectorStore selects the configured backend.
func NewVectorStore(cfg *config.Config) (knowledge.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "milvus":
		return knowledge.NewMilvusVectorStore(knowledge.MilvusOptions{
			Address:    cfg.VectorStore.Milvus.Address,
			Username:   cfg.VectorStore.Milvus.Username,
			Password:   cfg.VectorStore.Milvus.Password,
			Database:   cfg.VectorStore.Milvus.Database,
			UseTLS:     cfg.VectorStore.Milvus.TLS,
			Collection: cfg.Knowledge.Collection,
			VectorSize: cfg.Knowledge.VectorSize,
			Distance:   cfg.Knowledge.Distance,
		})
	default:
		return knowledge.NewQdrantVectorStore(knowledge.QdrantOptions{
			Endpoint:   cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Timeout:    cfg.VectorStore.Qdrant.Timeout,
			Collection: cfg.Knowledge.Collection,
			VectorSize: cfg.Knowledge.VectorSize,
			Distance:   cfg.Knowledge.Distance,
		})
	}
}

// NewDocumentSource builds the Drive source when credentials and folder are
// configured, otherwise returns nil and the sync trigger stays disabled.
func NewDocumentSource(cfg *config.Config, log *zap.Logger) services.DocumentSource {
	if cfg.Drive.CredentialsFile == "" || cfg.Drive.FolderID == "" {
		return nil
	}

	client, err := drive.NewClient(context.Background(), cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
	if err != nil {
		log.Warn("drive source unavailable, sync disabled", zap.Error(err))
		return nil
	}
	return client
}
