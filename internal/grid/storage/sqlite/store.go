// Package sqlite persists layer snapshots to a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/terralab/patchgrid/internal/grid"
)

// SnapshotStore provides persistence for layer snapshots. It
// implements grid.SnapStore.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and
// ensures the schema exists. Use ":memory:" for tests.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS layer_snapshots (
			snapshot_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			layer_id          TEXT NOT NULL,
			kind              TEXT NOT NULL,
			rows              INTEGER NOT NULL,
			cols              INTEGER NOT NULL,
			params_json       TEXT NOT NULL,
			raster_blob       BLOB NOT NULL,
			taken_unix_nanos  INTEGER NOT NULL,
			snapshot_reason   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_layer_snapshots_layer
			ON layer_snapshots(layer_id, taken_unix_nanos);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// InsertSnapshot persists a snapshot and returns its assigned ID. A
// missing layer ID gets a generated UUID so orphan snapshots remain
// addressable.
func (s *SnapshotStore) InsertSnapshot(snap *grid.LayerSnapshot) (int64, error) {
	if snap.LayerID == "" {
		snap.LayerID = uuid.New().String()
	}
	res, err := s.db.Exec(`
		INSERT INTO layer_snapshots (
			layer_id, kind, rows, cols, params_json,
			raster_blob, taken_unix_nanos, snapshot_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.LayerID, snap.Kind, snap.Rows, snap.Cols, snap.ParamsJSON,
		snap.RasterBlob, snap.TakenUnixNanos, snap.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	snap.SnapshotID = &id
	return id, nil
}

// Latest returns the most recent snapshot for a layer, or nil when
// none has been taken yet.
func (s *SnapshotStore) Latest(layerID string) (*grid.LayerSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, layer_id, kind, rows, cols, params_json,
		       raster_blob, taken_unix_nanos, snapshot_reason
		FROM layer_snapshots
		WHERE layer_id = ?
		ORDER BY taken_unix_nanos DESC, snapshot_id DESC
		LIMIT 1`, layerID)

	var snap grid.LayerSnapshot
	var id int64
	err := row.Scan(&id, &snap.LayerID, &snap.Kind, &snap.Rows, &snap.Cols,
		&snap.ParamsJSON, &snap.RasterBlob, &snap.TakenUnixNanos, &snap.Reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	snap.SnapshotID = &id
	return &snap, nil
}

// ListByLayer returns all snapshots for a layer, newest first, without
// their blobs (blob retrieval goes through Latest or GetByID).
func (s *SnapshotStore) ListByLayer(layerID string) ([]*grid.LayerSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, layer_id, kind, rows, cols, params_json,
		       taken_unix_nanos, snapshot_reason
		FROM layer_snapshots
		WHERE layer_id = ?
		ORDER BY taken_unix_nanos DESC, snapshot_id DESC`, layerID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*grid.LayerSnapshot
	for rows.Next() {
		var snap grid.LayerSnapshot
		var id int64
		if err := rows.Scan(&id, &snap.LayerID, &snap.Kind, &snap.Rows, &snap.Cols,
			&snap.ParamsJSON, &snap.TakenUnixNanos, &snap.Reason); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.SnapshotID = &id
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// GetByID fetches one snapshot, blob included.
func (s *SnapshotStore) GetByID(snapshotID int64) (*grid.LayerSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, layer_id, kind, rows, cols, params_json,
		       raster_blob, taken_unix_nanos, snapshot_reason
		FROM layer_snapshots
		WHERE snapshot_id = ?`, snapshotID)

	var snap grid.LayerSnapshot
	var id int64
	err := row.Scan(&id, &snap.LayerID, &snap.Kind, &snap.Rows, &snap.Cols,
		&snap.ParamsJSON, &snap.RasterBlob, &snap.TakenUnixNanos, &snap.Reason)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %d not found", snapshotID)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %d: %w", snapshotID, err)
	}
	snap.SnapshotID = &id
	return &snap, nil
}
