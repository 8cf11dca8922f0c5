package handlers

import (
	"net/http"
	"time"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	session := SessionHandler{Sessions: deps.Sessions}
	search := SearchHandler{
		Searcher:  deps.Search,
		Details:   deps.Details,
		Channels:  deps.Channels,
		Selection: deps.Selection,
		History:   deps.History,
		Quota:     deps.Quota,
		Filters:   deps.Filters,
		Limiter:   deps.SearchLimiter,
	}
	selection := SelectionHandler{Board: deps.Selection}
	metrics := AnalyticsHandler{Board: deps.Selection}
	exports := ExportHandler{
		Board:     deps.Selection,
		Artifacts: deps.Exports,
		Archiver:  deps.Archiver,
		NowFunc:   deps.NowFunc,
	}
	dash := DashboardHandler{
		Log:   deps.History,
		Store: deps.Filters,
		Feed:  deps.Notifications,
		Perf:  deps.Perf,
	}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/session", session.Handle)

	mux.HandleFunc("/api/v1/search", search.Search)
	mux.HandleFunc("/api/v1/trending", search.Trending)
	mux.HandleFunc("/api/v1/videos/", search.VideoDetail)
	mux.HandleFunc("/api/v1/channels/", search.ChannelDetail)

	mux.HandleFunc("/api/v1/selection", selection.Handle)
	mux.HandleFunc("/api/v1/selection/add", selection.Add)
	mux.HandleFunc("/api/v1/selection/remove", selection.Remove)
	mux.HandleFunc("/api/v1/selection/toggle", selection.Toggle)
	mux.HandleFunc("/api/v1/selection/all", selection.SelectAll)

	mux.HandleFunc("/api/v1/filters", dash.Filters)
	mux.HandleFunc("/api/v1/history", dash.History)
	mux.HandleFunc("/api/v1/notifications", dash.Notifications)
	mux.HandleFunc("/api/v1/metrics/requests", dash.Metrics)

	mux.HandleFunc("/api/v1/analytics/summary", metrics.Summary)
	mux.HandleFunc("/api/v1/analytics/correlation", metrics.Correlation)

	mux.HandleFunc("/api/v1/export/csv", exports.CSV)
	mux.HandleFunc("/api/v1/export/print", exports.Printable)
	mux.HandleFunc("/api/v1/export/artifacts", exports.ListArtifacts)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions      SessionService
	Search        SearchService
	Details       DetailProvider
	Channels      ChannelProvider
	Selection     SelectionBoard
	History       HistoryLog
	Quota         QuotaTracker
	Filters       FilterStore
	Perf          PerfSource
	Notifications NotificationFeed
	Exports       ExportArtifacts
	Archiver      ExportArchiver
	SearchLimiter RateLimiter
	NowFunc       func() time.Time
}
