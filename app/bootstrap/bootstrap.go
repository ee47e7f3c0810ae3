package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/config"
	"github.com/suedenergie/knowledge-backend/internal/di"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
	"github.com/suedenergie/knowledge-backend/internal/logger"
	"github.com/suedenergie/knowledge-backend/internal/services"
)

// App holds the constructed service graph and the resources that need to be
// released on shutdown.
type App struct {
	Config    *config.Config
	Store     knowledge.VectorStore
	Embedder  knowledge.Embedder
	Generator knowledge.Generator
	Ingest    *services.IngestService
	Chat      *services.ChatService
	Sync      *services.SyncService
	Metrics   *services.MetricsService
}

var globalApp *App

// GetApp returns the bootstrapped application instance.
func GetApp() *App {
	return globalApp
}

// SetGlobalApp sets the application instance (tests use this with fakes).
func SetGlobalApp(app *App) {
	globalApp = app
}

// Init bootstraps configuration, logger, the dependency container and the
// background sync trigger.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	container := di.InitContainer()
	if err := di.RegisterProviders(container); err != nil {
		return nil, err
	}

	app := &App{}
	err := container.Invoke(func(
		cfg *config.Config,
		store knowledge.VectorStore,
		embedder knowledge.Embedder,
		generator knowledge.Generator,
		ingest *services.IngestService,
		chat *services.ChatService,
		sync *services.SyncService,
		metrics *services.MetricsService,
	) {
		app.Config = cfg
		app.Store = store
		app.Embedder = embedder
		app.Generator = generator
		app.Ingest = ingest
		app.Chat = chat
		app.Sync = sync
		app.Metrics = metrics
	})
	if err != nil {
		return nil, err
	}

	// Bootstrap the collection up front. The store may come up after the API
	// does, so an unreachable store is a warning; every store call re-ensures
	// the collection.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Store.EnsureCollection(ctx); err != nil {
		logger.Warn("vector store not reachable at startup, collection will be created on first use",
			zap.Error(err))
	}

	app.Sync.Start()
	SetGlobalApp(app)

	logger.Info("application bootstrapped",
		zap.String("collection", app.Config.Knowledge.Collection),
		zap.String("vector_backend", app.Config.VectorStore.Backend),
		zap.Bool("embedding_ready", app.Embedder.Ready()),
		zap.Bool("generation_ready", app.Generator.Ready()),
		zap.Bool("sync_enabled", app.Sync.Enabled()))

	return app, nil
}

// Shutdown stops the background trigger and flushes the logger.
func (a *App) Shutdown() {
	if a.Sync != nil {
		a.Sync.Stop()
	}
	logger.Sync()
}
