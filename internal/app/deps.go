package app

import (
	"context"
	"log/slog"

	"github.com/vidlens/backend/internal/apiclient"
	"github.com/vidlens/backend/internal/config"
	"github.com/vidlens/backend/internal/db"
	"github.com/vidlens/backend/internal/events"
	"github.com/vidlens/backend/internal/export"
	"github.com/vidlens/backend/internal/handlers"
	"github.com/vidlens/backend/internal/history"
	"github.com/vidlens/backend/internal/middleware"
	"github.com/vidlens/backend/internal/quota"
	"github.com/vidlens/backend/internal/repositories"
	"github.com/vidlens/backend/internal/selection"
	"github.com/vidlens/backend/internal/state"
	"github.com/vidlens/backend/internal/storage"
	"github.com/vidlens/backend/internal/token"
	"github.com/vidlens/backend/internal/upstream"
	"github.com/vidlens/backend/internal/videos"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. pool may be nil, in which case the selection snapshot falls back
// to the state file and export archival stays disabled. The returned cleanup
// drains background workers and must be called during shutdown.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	st := state.NewFile(cfg.StatePath)
	tokens := token.NewStore(st)

	bus := events.NewBus()
	feed := events.NewFeed(bus, events.DefaultFeedCapacity)
	perf := apiclient.NewPerfLog(0)

	client := apiclient.New(cfg.UpstreamURL, cfg.ClientTimeout, tokens, bus, perf)
	auth := upstream.NewAuth(client, tokens)
	client.SetRefresher(auth)

	catalog := upstream.NewCatalog(client)
	details := videos.NewDetailCache(catalog, cfg.DetailCacheTTL)

	var snapshots selection.Store
	if pool != nil {
		snapshots = repositories.NewPostgresSelectionStore(pool)
	} else {
		snapshots = selection.NewFileStore(st)
	}
	board := selection.NewManager(snapshots)
	if err := board.Restore(ctx); err != nil {
		logger.Warn("restore selection snapshot", "error", err)
	}

	deps := handlers.Dependencies{
		Sessions:      auth,
		Search:        catalog,
		Details:       details,
		Channels:      catalog,
		Selection:     board,
		History:       history.NewLog(st),
		Quota:         quota.NewTracker(st, cfg.DailyQuota),
		Filters:       videos.NewFilterStore(st),
		Perf:          perf,
		Notifications: feed,
		SearchLimiter: middleware.NewSearchLimiter(),
	}

	cleanup := func(context.Context) error { return nil }

	if pool != nil && cfg.ObjectStore.Bucket != "" {
		artifacts := repositories.NewPostgresExportRepository(pool)
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		archiver := export.NewArchiver(store, artifacts, export.ArchiverConfig{}, logger)
		deps.Exports = artifacts
		deps.Archiver = archiver
		cleanup = archiver.Shutdown
	}

	return deps, cleanup, nil
}
