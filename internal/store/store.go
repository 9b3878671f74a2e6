// Package store is the optional persistence adapter: it writes one row per
// scan for an embedding job runner, grounded on the pack's pgx-based job
// worker store. It has no bearing on RunScan's pure behavior -- it wraps
// the call, never participates in it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomkangali/gqlbola/internal/model"
)

// Store wraps a pooled connection to the relational database that backs
// the optional job runner.
type Store struct {
	Pool *pgxpool.Pool
}

// Open connects to connString and ensures the scans table exists.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s := &Store{Pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// EnsureSchema creates the scans table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scans (
	id TEXT PRIMARY KEY,
	target_url TEXT NOT NULL,
	status TEXT NOT NULL,
	findings JSONB NOT NULL DEFAULT '[]',
	completed_at TIMESTAMPTZ
)`)
	return err
}

// InsertQueued writes the initial row for a scan before connectivity is
// attempted, with status='Queued'.
func (s *Store) InsertQueued(ctx context.Context, scanID, targetURL string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO scans (id, target_url, status, findings) VALUES ($1, $2, $3, '[]')
		 ON CONFLICT (id) DO UPDATE SET target_url = EXCLUDED.target_url, status = EXCLUDED.status`,
		scanID, targetURL, string(model.StatusQueued),
	)
	return err
}

// Finalize refreshes the row's status, findings, and completed_at once
// RunScan returns.
func (s *Store) Finalize(ctx context.Context, result model.ScanResult) error {
	findingsJSON, err := json.Marshal(result.Findings)
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}
	completedAt := result.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	_, err = s.Pool.Exec(ctx,
		`UPDATE scans SET status = $1, findings = $2, completed_at = $3 WHERE id = $4`,
		string(result.Status), findingsJSON, completedAt, result.ScanID,
	)
	return err
}
