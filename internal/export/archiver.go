package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vidlens/backend/internal/models"
)

// ArtifactUpdater persists archival status updates for export artifacts.
type ArtifactUpdater interface {
	MarkReady(ctx context.Context, id, location string, size int64) error
	MarkFailed(ctx context.Context, id string) error
}

// ArchiveStorage stores a generated document and returns its public
// location.
type ArchiveStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ArchiverConfig controls the concurrency characteristics of the archiver.
type ArchiverConfig struct {
	QueueSize int
	Workers   int
}

// Archiver asynchronously uploads generated export documents to object
// storage, so a slow upload never delays the download handed to the user.
type Archiver struct {
	storage ArchiveStorage
	updater ArtifactUpdater
	logger  *slog.Logger

	jobs   chan archiveJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type archiveJob struct {
	artifact models.ExportArtifact
	content  []byte
}

var errArchiverClosed = errors.New("export archiver closed")

// NewArchiver constructs a background worker pool that archives exports.
func NewArchiver(storage ArchiveStorage, updater ArtifactUpdater, cfg ArchiverConfig, logger *slog.Logger) *Archiver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Archiver{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan archiveJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	a.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go a.worker()
	}

	return a
}

// Enqueue schedules archival of the generated document.
func (a *Archiver) Enqueue(ctx context.Context, artifact models.ExportArtifact, content []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return errArchiverClosed
	default:
	}

	job := archiveJob{artifact: artifact, content: content}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return errArchiverClosed
	case a.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs. The jobs
// channel is never closed so an Enqueue racing shutdown fails cleanly
// instead of panicking on a closed channel.
func (a *Archiver) Shutdown(ctx context.Context) error {
	a.once.Do(a.cancel)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (a *Archiver) worker() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			a.drain()
			return
		case job := <-a.jobs:
			a.handleJob(job)
		}
	}
}

// drain finishes jobs already queued at shutdown.
func (a *Archiver) drain() {
	for {
		select {
		case job := <-a.jobs:
			a.handleJob(job)
		default:
			return
		}
	}
}

func (a *Archiver) handleJob(job archiveJob) {
	if a.storage == nil || a.updater == nil {
		a.logger.Error("export archiver missing dependencies",
			"hasStorage", a.storage != nil, "hasUpdater", a.updater != nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	key := archiveKey(job.artifact)
	location, err := a.storage.Save(ctx, key, bytes.NewReader(job.content))
	if err != nil {
		a.logger.Error("archive export", "artifact", job.artifact.ID, "error", err)
		if updErr := a.updater.MarkFailed(ctx, job.artifact.ID); updErr != nil {
			a.logger.Error("mark export failed", "artifact", job.artifact.ID, "error", updErr)
		}
		return
	}

	if err := a.updater.MarkReady(ctx, job.artifact.ID, location, int64(len(job.content))); err != nil {
		a.logger.Error("mark export ready", "artifact", job.artifact.ID, "error", err)
		return
	}
	a.logger.Info("export archived", "artifact", job.artifact.ID, "location", location)
}

func archiveKey(artifact models.ExportArtifact) string {
	ext := "csv"
	if artifact.Kind == models.ExportKindPrint {
		ext = "html"
	}
	return fmt.Sprintf("exports/%s.%s", artifact.ID, ext)
}
