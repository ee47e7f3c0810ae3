package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	AI          AIConfig
	Knowledge   KnowledgeConfig
	VectorStore VectorStoreConfig
	Drive       DriveConfig
	Sync        SyncConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AIConfig struct {
	OpenAIAPIKey   string
	EmbeddingModel string
	ChatModel      string
}

// IngestPolicy controls what re-ingesting an already indexed source does.
type IngestPolicy string

const (
	// IngestPolicyAppend stores fresh records on every ingestion. Re-ingesting
	// the same document duplicates its pages in the collection.
	IngestPolicyAppend IngestPolicy = "append"
	// IngestPolicyReplace removes the previous records for the source before
	// the new batch is written.
	IngestPolicyReplace IngestPolicy = "replace"
)

type KnowledgeConfig struct {
	Collection   string
	VectorSize   int
	Distance     string
	TopK         int
	ChunkSize    int
	ChunkOverlap int
	IngestPolicy IngestPolicy
}

type VectorStoreConfig struct {
	Backend string // qdrant | milvus
	Qdrant  QdrantConfig
	Milvus  MilvusConfig
}

type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type MilvusConfig struct {
	Address  string
	Username string
	Password string
	Database string
	TLS      bool
}

type DriveConfig struct {
	FolderID        string
	CredentialsFile string
}

type SyncConfig struct {
	IntervalMinutes int
}

var AppConfig *Config

// LoadConfig reads config.yaml (optional) and environment variables into
// AppConfig. Environment variables take precedence over the file.
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnvOverrides()

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		AI: AIConfig{
			OpenAIAPIKey:   viper.GetString("ai.openai_api_key"),
			EmbeddingModel: viper.GetString("ai.embedding_model"),
			ChatModel:      viper.GetString("ai.chat_model"),
		},
		Knowledge: KnowledgeConfig{
			Collection:   viper.GetString("knowledge.collection"),
			VectorSize:   viper.GetInt("knowledge.vector_size"),
			Distance:     viper.GetString("knowledge.distance"),
			TopK:         viper.GetInt("knowledge.top_k"),
			ChunkSize:    viper.GetInt("knowledge.chunk_size"),
			ChunkOverlap: viper.GetInt("knowledge.chunk_overlap"),
			IngestPolicy: IngestPolicy(viper.GetString("knowledge.ingest_policy")),
		},
		VectorStore: VectorStoreConfig{
			Backend: strings.ToLower(viper.GetString("vector_store.backend")),
			Qdrant: QdrantConfig{
				URL:     viper.GetString("vector_store.qdrant.url"),
				APIKey:  viper.GetString("vector_store.qdrant.api_key"),
				Timeout: viper.GetDuration("vector_store.qdrant.timeout"),
			},
			Milvus: MilvusConfig{
				Address:  viper.GetString("vector_store.milvus.address"),
				Username: viper.GetString("vector_store.milvus.username"),
				Password: viper.GetString("vector_store.milvus.password"),
				Database: viper.GetString("vector_store.milvus.database"),
				TLS:      viper.GetBool("vector_store.milvus.tls"),
			},
		},
		Drive: DriveConfig{
			FolderID:        viper.GetString("drive.folder_id"),
			CredentialsFile: viper.GetString("drive.credentials_file"),
		},
		Sync: SyncConfig{
			IntervalMinutes: viper.GetInt("sync.interval_minutes"),
		},
	}

	return AppConfig.Validate()
}

func setDefaults() {
	viper.SetDefault("server.port", "8001")
	viper.SetDefault("server.env", "production")
	viper.SetDefault("ai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ai.chat_model", "gpt-4o-mini")
	viper.SetDefault("knowledge.collection", "suedenergie_docs")
	viper.SetDefault("knowledge.vector_size", 1536)
	viper.SetDefault("knowledge.distance", "Cosine")
	viper.SetDefault("knowledge.top_k", 5)
	viper.SetDefault("knowledge.chunk_size", 0)
	viper.SetDefault("knowledge.chunk_overlap", 0)
	viper.SetDefault("knowledge.ingest_policy", string(IngestPolicyAppend))
	viper.SetDefault("vector_store.backend", "qdrant")
	viper.SetDefault("vector_store.qdrant.timeout", 10*time.Second)
	viper.SetDefault("vector_store.milvus.database", "default")
	viper.SetDefault("sync.interval_minutes", 0)
}

func applyEnvOverrides() {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if env := os.Getenv("ENV"); env != "" {
		viper.Set("server.env", env)
	}
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		viper.Set("ai.openai_api_key", openaiKey)
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		viper.Set("ai.embedding_model", model)
	}
	if model := os.Getenv("CHAT_MODEL"); model != "" {
		viper.Set("ai.chat_model", model)
	}
	if backend := os.Getenv("VECTOR_BACKEND"); backend != "" {
		viper.Set("vector_store.backend", backend)
	}
	if url := os.Getenv("QDRANT_URL"); url != "" {
		viper.Set("vector_store.qdrant.url", url)
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		viper.Set("vector_store.qdrant.api_key", key)
	}
	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		viper.Set("vector_store.milvus.address", addr)
	}
	if collection := os.Getenv("KNOWLEDGE_COLLECTION"); collection != "" {
		viper.Set("knowledge.collection", collection)
	}
	if policy := os.Getenv("INGEST_POLICY"); policy != "" {
		viper.Set("knowledge.ingest_policy", strings.ToLower(policy))
	}
	if folderID := os.Getenv("GOOGLE_DRIVE_FOLDER_ID"); folderID != "" {
		viper.Set("drive.folder_id", folderID)
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		viper.Set("drive.credentials_file", creds)
	}
	if interval := os.Getenv("SYNC_INTERVAL_MINUTES"); interval != "" {
		viper.Set("sync.interval_minutes", interval)
	}
}

// Validate checks the settings that make the process unable to serve at all.
// Missing AI credentials are deliberately not fatal; they select degraded mode.
func (c *Config) Validate() error {
	if c.Knowledge.VectorSize <= 0 {
		return fmt.Errorf("knowledge.vector_size must be positive, got %d", c.Knowledge.VectorSize)
	}
	switch c.Knowledge.IngestPolicy {
	case IngestPolicyAppend, IngestPolicyReplace:
	default:
		return fmt.Errorf("knowledge.ingest_policy must be append or replace, got %q", c.Knowledge.IngestPolicy)
	}
	switch c.VectorStore.Backend {
	case "qdrant":
		if c.VectorStore.Qdrant.URL == "" {
			return fmt.Errorf("vector_store.qdrant.url is required (QDRANT_URL)")
		}
	case "milvus":
		if c.VectorStore.Milvus.Address == "" {
			return fmt.Errorf("vector_store.milvus.address is required (MILVUS_ADDRESS)")
		}
	default:
		return fmt.Errorf("unknown vector store backend %q", c.VectorStore.Backend)
	}
	return nil
}

// GetAppConfig returns the loaded configuration.
func GetAppConfig() *Config {
	return AppConfig
}
