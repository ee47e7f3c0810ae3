package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/drive"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
)

// DocumentSource lists and downloads source documents from an external store.
type DocumentSource interface {
	ListPDFs(ctx context.Context) ([]drive.File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Ingestor is the part of the ingest service the sync trigger needs.
type Ingestor interface {
	Ingest(ctx context.Context, data []byte, meta knowledge.SourceMeta) (*IngestResult, error)
}

// SyncService periodically pulls new or changed PDFs from the document source
// and feeds them to the ingest pipeline. Per-file failures are logged and
// skipped; a failed run waits for the next tick, never retrying tighter than
// the configured interval.
type SyncService struct {
	source   DocumentSource
	ingestor Ingestor
	interval time.Duration
	metrics  *MetricsService
	logger   *zap.Logger

	mu   sync.Mutex
	seen map[string]string // file id -> last ingested modifiedTime

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSyncService builds the trigger. source may be nil when Drive is not
// configured; Start then logs a notice and does nothing.
func NewSyncService(source DocumentSource, ingestor Ingestor, interval time.Duration, metrics *MetricsService, logger *zap.Logger) *SyncService {
	return &SyncService{
		source:   source,
		ingestor: ingestor,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		seen:     make(map[string]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Enabled reports whether the trigger has a source and a positive interval.
func (s *SyncService) Enabled() bool {
	return s.source != nil && s.interval > 0
}

// Start launches the periodic sync loop. Safe to call when disabled.
func (s *SyncService) Start() {
	if !s.Enabled() {
		close(s.done)
		if s.source == nil {
			s.logger.Info("drive sync disabled: no document source configured")
		} else {
			s.logger.Info("drive sync disabled: interval not set")
		}
		return
	}

	s.logger.Info("drive sync started", zap.Duration("interval", s.interval))
	go s.loop()
}

// Stop terminates the sync loop and waits for an in-flight run to finish.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *SyncService) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Warn("drive sync run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunOnce performs a single sync pass and returns the number of documents
// ingested. Files whose modifiedTime is unchanged since the last pass are
// skipped, so only new or changed documents are re-ingested.
func (s *SyncService) RunOnce(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, nil
	}

	files, err := s.source.ListPDFs(ctx)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.SyncRun()
	}

	ingested := 0
	for _, file := range files {
		if s.alreadySeen(file) {
			continue
		}

		data, err := s.source.Download(ctx, file.ID)
		if err != nil {
			s.logger.Warn("drive download failed, skipping file",
				zap.String("file", file.Name), zap.Error(err))
			continue
		}

		meta := knowledge.SourceMeta{Name: file.Name, Modified: file.ModifiedTime}
		if _, err := s.ingestor.Ingest(ctx, data, meta); err != nil {
			s.logger.Warn("drive ingest failed, skipping file",
				zap.String("file", file.Name), zap.Error(err))
			continue
		}

		s.markSeen(file)
		ingested++
	}

	s.logger.Info("drive sync finished",
		zap.Int("listed", len(files)),
		zap.Int("ingested", ingested))
	return ingested, nil
}

func (s *SyncService) alreadySeen(file drive.File) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.seen[file.ID]
	return ok && last == file.ModifiedTime
}

func (s *SyncService) markSeen(file drive.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[file.ID] = file.ModifiedTime
}
