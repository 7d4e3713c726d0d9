package flow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/andyoucreate/rilaykit/model"
)

// Fixed-width timestamp layout so the TEXT column sorts chronologically;
// RFC3339Nano trims trailing zeros and breaks lexicographic ordering within
// a second.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS flow_snapshots (
	workflow_id TEXT PRIMARY KEY,
	snapshot    TEXT NOT NULL,
	last_saved  TIMESTAMP NOT NULL
);
`

// SQLiteStore persists flow snapshots as JSON rows in a SQLite database.
// The modernc.org/sqlite driver keeps the store CGo-free.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// snapshot table exists. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the snapshot keyed by workflow id.
func (s *SQLiteStore) Save(ctx context.Context, snap model.FlowSnapshot) error {
	if snap.WorkflowID == "" {
		return model.NewConfigurationError("snapshot workflow id is required")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.WorkflowID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flow_snapshots (workflow_id, snapshot, last_saved)
		VALUES (?, ?, ?)
		ON CONFLICT(workflow_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			last_saved = excluded.last_saved`,
		snap.WorkflowID, string(data), snap.LastSaved.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.WorkflowID, err)
	}
	return nil
}

// Load retrieves the snapshot for a workflow id.
func (s *SQLiteStore) Load(ctx context.Context, workflowID string) (model.FlowSnapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM flow_snapshots WHERE workflow_id = ?`, workflowID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FlowSnapshot{}, model.NewNotFoundError(
			fmt.Sprintf("snapshot for workflow %q not found", workflowID))
	}
	if err != nil {
		return model.FlowSnapshot{}, fmt.Errorf("load snapshot %s: %w", workflowID, err)
	}

	var snap model.FlowSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return model.FlowSnapshot{}, fmt.Errorf("unmarshal snapshot %s: %w", workflowID, err)
	}
	return snap, nil
}

// Delete removes a snapshot; missing snapshots are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, workflowID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM flow_snapshots WHERE workflow_id = ?`, workflowID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", workflowID, err)
	}
	return nil
}

// List returns all snapshots sorted by last-saved time descending.
func (s *SQLiteStore) List(ctx context.Context) ([]model.FlowSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM flow_snapshots ORDER BY last_saved DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var result []model.FlowSnapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var snap model.FlowSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot row: %w", err)
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
