package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/internal/drive"
)

func newSyncService(source DocumentSource, ingestor Ingestor) *SyncService {
	return NewSyncService(source, ingestor, time.Minute, NewMetricsService(), zap.NewNop())
}

func TestSyncRunOnceIngestsListedFiles(t *testing.T) {
	source := &fakeSource{
		files: []drive.File{
			{ID: "f1", Name: "a.pdf", ModifiedTime: "2026-08-01T10:00:00Z"},
			{ID: "f2", Name: "b.pdf", ModifiedTime: "2026-08-02T10:00:00Z"},
		},
		content: map[string][]byte{"f1": []byte("pdf-a"), "f2": []byte("pdf-b")},
	}
	ingestor := &fakeIngestor{}
	svc := newSyncService(source, ingestor)

	ingested, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ingested)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ingestor.ingested)
}

func TestSyncSkipsUnchangedFiles(t *testing.T) {
	source := &fakeSource{
		files:   []drive.File{{ID: "f1", Name: "a.pdf", ModifiedTime: "2026-08-01T10:00:00Z"}},
		content: map[string][]byte{"f1": []byte("pdf-a")},
	}
	ingestor := &fakeIngestor{}
	svc := newSyncService(source, ingestor)

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	ingested, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ingested)
	assert.Len(t, ingestor.ingested, 1)

	// A changed modifiedTime triggers re-ingestion.
	source.files[0].ModifiedTime = "2026-08-03T10:00:00Z"
	ingested, err = svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ingested)
	assert.Len(t, ingestor.ingested, 2)
}

func TestSyncSkipsFileOnDownloadError(t *testing.T) {
	source := &fakeSource{
		files: []drive.File{
			{ID: "f1", Name: "a.pdf", ModifiedTime: "t1"},
			{ID: "f2", Name: "b.pdf", ModifiedTime: "t2"},
		},
		content:     map[string][]byte{"f2": []byte("pdf-b")},
		downloadErr: map[string]error{"f1": errors.New("quota exceeded")},
	}
	ingestor := &fakeIngestor{}
	svc := newSyncService(source, ingestor)

	ingested, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ingested)
	assert.Equal(t, []string{"b.pdf"}, ingestor.ingested)
}

func TestSyncFailedIngestIsRetriedNextRun(t *testing.T) {
	source := &fakeSource{
		files:   []drive.File{{ID: "f1", Name: "a.pdf", ModifiedTime: "t1"}},
		content: map[string][]byte{"f1": []byte("pdf-a")},
	}
	ingestor := &fakeIngestor{failFor: map[string]error{"a.pdf": errors.New("store down")}}
	svc := newSyncService(source, ingestor)

	ingested, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ingested)

	// Failed files are not marked seen, so the next run tries again.
	ingestor.failFor = nil
	ingested, err = svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ingested)
}

func TestSyncListErrorPropagates(t *testing.T) {
	source := &fakeSource{listErr: errors.New("credentials expired")}
	svc := newSyncService(source, &fakeIngestor{})

	_, err := svc.RunOnce(context.Background())
	require.Error(t, err)
}

func TestSyncEnabled(t *testing.T) {
	assert.True(t, newSyncService(&fakeSource{}, &fakeIngestor{}).Enabled())
	assert.False(t, newSyncService(nil, &fakeIngestor{}).Enabled())

	noInterval := NewSyncService(&fakeSource{}, &fakeIngestor{}, 0, NewMetricsService(), zap.NewNop())
	assert.False(t, noInterval.Enabled())
}

func TestSyncStartStopWhenDisabled(t *testing.T) {
	svc := NewSyncService(nil, &fakeIngestor{}, time.Minute, NewMetricsService(), zap.NewNop())
	svc.Start()
	svc.Stop() // must not block or panic
}

func TestSyncStartStopWhenEnabled(t *testing.T) {
	svc := newSyncService(&fakeSource{}, &fakeIngestor{})
	svc.Start()

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
