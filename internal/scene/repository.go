package scene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for snapshot persistence.
// Every Save appends a revision; Load returns the newest one.
type Repository interface {
	Save(ctx context.Context, snap *Snapshot) (int64, error)
	Load(ctx context.Context) (*Snapshot, error)
	LoadRevision(ctx context.Context, id int64) (*Snapshot, error)
	ListRevisions(ctx context.Context, limit int) ([]Revision, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// Revision describes one saved snapshot without its body.
type Revision struct {
	ID            int64     `json:"id"`
	SceneCount    int       `json:"scene_count"`
	ActiveSceneID string    `json:"active_scene_id"`
	SavedAt       time.Time `json:"saved_at"`
}

// SQLiteRepository implements Repository using the scene_collections table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save stores a snapshot as a new revision and returns its id.
func (r *SQLiteRepository) Save(ctx context.Context, snap *Snapshot) (int64, error) {
	if snap == nil {
		return 0, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("marshalling snapshot: %w", err)
	}

	query := `
		INSERT INTO scene_collections (version, active_scene_id, scene_count, snapshot, saved_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		snap.Version,
		snap.ActiveSceneID,
		len(snap.Scenes),
		string(body),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading revision id: %w", err)
	}
	return id, nil
}

// Load returns the most recently saved snapshot.
func (r *SQLiteRepository) Load(ctx context.Context) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT snapshot FROM scene_collections ORDER BY id DESC LIMIT 1`)
	return scanSnapshot(row)
}

// LoadRevision returns a specific revision.
func (r *SQLiteRepository) LoadRevision(ctx context.Context, id int64) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT snapshot FROM scene_collections WHERE id = ?`, id)
	return scanSnapshot(row)
}

// ListRevisions returns up to limit revisions, newest first.
func (r *SQLiteRepository) ListRevisions(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, scene_count, active_scene_id, saved_at
		FROM scene_collections
		ORDER BY id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		var savedAt string
		if err := rows.Scan(&rev.ID, &rev.SceneCount, &rev.ActiveSceneID, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		if rev.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("parsing saved_at: %w", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}
	return revisions, nil
}

// Prune deletes all but the newest keep revisions and returns how many rows
// were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	query := `
		DELETE FROM scene_collections
		WHERE id NOT IN (SELECT id FROM scene_collections ORDER BY id DESC LIMIT ?)`

	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return &snap, nil
}
