package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidlens/backend/internal/export"
	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/models"
)

// ExportHandler serves downloadable export documents for the current
// selection and, when archival is configured, schedules their upload.
type ExportHandler struct {
	Board     SelectionBoard
	Artifacts ExportArtifacts
	Archiver  ExportArchiver
	NowFunc   func() time.Time
}

// CSV handles GET /api/v1/export/csv.
func (h ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, models.ExportKindCSV, "text/csv; charset=utf-8", export.BuildCSV)
}

// Printable handles GET /api/v1/export/print.
func (h ExportHandler) Printable(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, models.ExportKindPrint, "text/html; charset=utf-8", func(vids []models.Video) ([]byte, error) {
		return export.BuildPrintable(vids, h.now())
	})
}

// ListArtifacts handles GET /api/v1/export/artifacts, listing archived
// exports.
func (h ExportHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Artifacts == nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "export archival is not configured"})
		return
	}

	artifacts, err := h.Artifacts.List(ctx, 50)
	if err != nil {
		logging.FromContext(ctx).Error("list export artifacts", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list exports"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

func (h ExportHandler) serve(w http.ResponseWriter, r *http.Request, kind, contentType string, build func([]models.Video) ([]byte, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Board == nil {
		logger.Error("selection board unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "export service unavailable"})
		return
	}

	vids := h.Board.Videos()
	if len(vids) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "the selection is empty"})
		return
	}

	content, err := build(vids)
	if err != nil {
		logger.Error("build export document", "kind", kind, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to build export"})
		return
	}

	h.archive(r, kind, content)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(kind, h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		logger.Warn("write export document", "kind", kind, "error", err)
	}
}

// archive records the artifact and hands the document to the background
// archiver. Archival is best-effort: failures never block the download.
func (h ExportHandler) archive(r *http.Request, kind string, content []byte) {
	if h.Artifacts == nil || h.Archiver == nil {
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	artifact := models.ExportArtifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    models.ExportStatusPending,
		CreatedAt: h.now(),
	}

	if err := h.Artifacts.Create(ctx, artifact); err != nil {
		logger.Warn("record export artifact", "kind", kind, "error", err)
		return
	}
	if err := h.Archiver.Enqueue(ctx, artifact, content); err != nil {
		logger.Warn("enqueue export archival", "artifact", artifact.ID, "error", err)
	}
}

func (h ExportHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
