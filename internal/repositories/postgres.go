package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidlens/backend/internal/db"
	"github.com/vidlens/backend/internal/export"
	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/selection"
)

// DefaultProfile keys the single-dashboard selection snapshot. A multi-user
// deployment would key per account.
const DefaultProfile = "default"

// PostgresSelectionStore persists selection snapshots to PostgreSQL, as an
// alternative to the JSON state file for deployments that want durability
// across hosts.
type PostgresSelectionStore struct {
	pool    db.Pool
	profile string
}

// NewPostgresSelectionStore constructs a selection store backed by PostgreSQL.
func NewPostgresSelectionStore(pool db.Pool) *PostgresSelectionStore {
	return &PostgresSelectionStore{pool: pool, profile: DefaultProfile}
}

// Save upserts the snapshot for the configured profile.
func (s *PostgresSelectionStore) Save(ctx context.Context, snap models.SelectionSnapshot) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	payload, err := json.Marshal(snap.SelectedVideos)
	if err != nil {
		return fmt.Errorf("encode selection payload: %w", err)
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO selection_snapshots (profile, payload, search_query, search_type, total_results, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (profile)
        DO UPDATE SET payload = EXCLUDED.payload,
                      search_query = EXCLUDED.search_query,
                      search_type = EXCLUDED.search_type,
                      total_results = EXCLUDED.total_results,
                      created_at = EXCLUDED.created_at,
                      expires_at = EXCLUDED.expires_at
    `, s.profile, payload, snap.SearchQuery, snap.SearchType, snap.TotalResults, snap.Timestamp.UTC(), snap.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert selection snapshot: %w", err)
	}

	return nil
}

// Load fetches the snapshot for the configured profile.
func (s *PostgresSelectionStore) Load(ctx context.Context) (models.SelectionSnapshot, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.SelectionSnapshot{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT payload, search_query, search_type, total_results, created_at, expires_at
        FROM selection_snapshots
        WHERE profile = $1
    `, s.profile)

	var (
		payload   []byte
		snap      models.SelectionSnapshot
		createdAt time.Time
		expiresAt time.Time
	)
	if err := row.Scan(&payload, &snap.SearchQuery, &snap.SearchType, &snap.TotalResults, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SelectionSnapshot{}, selection.ErrSnapshotNotFound
		}
		return models.SelectionSnapshot{}, fmt.Errorf("select selection snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snap.SelectedVideos); err != nil || snap.SelectedVideos == nil {
		return models.SelectionSnapshot{}, selection.ErrSnapshotNotFound
	}
	snap.Timestamp = createdAt.UTC()
	snap.ExpiresAt = expiresAt.UTC()

	return snap, nil
}

// Delete removes the snapshot for the configured profile. Deleting an
// absent snapshot is not an error.
func (s *PostgresSelectionStore) Delete(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM selection_snapshots WHERE profile = $1`, s.profile); err != nil {
		return fmt.Errorf("delete selection snapshot: %w", err)
	}
	return nil
}

// PostgresExportRepository tracks generated export artifacts through
// archival.
type PostgresExportRepository struct {
	pool db.Pool
}

// NewPostgresExportRepository constructs an export artifact repository
// backed by PostgreSQL.
func NewPostgresExportRepository(pool db.Pool) *PostgresExportRepository {
	return &PostgresExportRepository{pool: pool}
}

// Create records a freshly generated artifact.
func (r *PostgresExportRepository) Create(ctx context.Context, artifact models.ExportArtifact) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	status := artifact.Status
	if status == "" {
		status = models.ExportStatusPending
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO export_artifacts (id, kind, status, location, size, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, artifact.ID, artifact.Kind, status, artifact.Location, artifact.Size, artifact.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert export artifact: %w", err)
	}

	return nil
}

// Get fetches one artifact by id.
func (r *PostgresExportRepository) Get(ctx context.Context, id string) (models.ExportArtifact, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ExportArtifact{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, kind, status, location, size, created_at
        FROM export_artifacts
        WHERE id = $1
    `, id)

	var artifact models.ExportArtifact
	if err := row.Scan(&artifact.ID, &artifact.Kind, &artifact.Status, &artifact.Location, &artifact.Size, &artifact.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ExportArtifact{}, ErrNotFound
		}
		return models.ExportArtifact{}, fmt.Errorf("select export artifact: %w", err)
	}

	return artifact, nil
}

// List returns the most recent artifacts, newest first.
func (r *PostgresExportRepository) List(ctx context.Context, limit int) ([]models.ExportArtifact, error) {
	if limit <= 0 {
		limit = 50
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, kind, status, location, size, created_at
        FROM export_artifacts
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query export artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []models.ExportArtifact
	for rows.Next() {
		var artifact models.ExportArtifact
		if err := rows.Scan(&artifact.ID, &artifact.Kind, &artifact.Status, &artifact.Location, &artifact.Size, &artifact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export artifact: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export artifacts: %w", err)
	}

	return artifacts, nil
}

// MarkReady records a successful archival with the artifact's final
// location and size.
func (r *PostgresExportRepository) MarkReady(ctx context.Context, id, location string, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE export_artifacts
        SET status = $2,
            location = $3,
            size = $4
        WHERE id = $1
    `, id, models.ExportStatusReady, location, size)
	if err != nil {
		return fmt.Errorf("update export artifact ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkFailed records a failed archival attempt.
func (r *PostgresExportRepository) MarkFailed(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE export_artifacts
        SET status = $2,
            location = '',
            size = 0
        WHERE id = $1
    `, id, models.ExportStatusFailed)
	if err != nil {
		return fmt.Errorf("update export artifact failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ selection.Store = (*PostgresSelectionStore)(nil)
var _ export.ArtifactUpdater = (*PostgresExportRepository)(nil)
