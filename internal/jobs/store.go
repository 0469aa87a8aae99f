// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobs runs alternatives requests in the background and keeps their
// status and result in a SQLite table so callers can poll for them.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/partfinder/pkg/types"
)

// DefaultDSN keeps jobs in memory for the life of the process.
const DefaultDSN = ":memory:"

// ErrNotFound is returned by Get for an unknown job id.
var ErrNotFound = errors.New("job not found")

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one background request.
type Job struct {
	ID        string          `json:"id" yaml:"id"`
	Kind      string          `json:"kind" yaml:"kind"`
	Parts     []string        `json:"parts" yaml:"parts"`
	Status    Status          `json:"status" yaml:"status"`
	Result    json.RawMessage `json:"result,omitempty" yaml:"-"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time       `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updated_at"`
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Store persists jobs in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens the job database named by cfg.DSN and creates the schema if
// it does not exist.
func NewStore(cfg types.JobsConfig) (*Store, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening job database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			parts TEXT NOT NULL,
			status TEXT NOT NULL,
			result TEXT,
			error TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create inserts a pending job with a fresh id.
func (s *Store) Create(ctx context.Context, kind string, parts []string) (*Job, error) {
	if parts == nil {
		parts = []string{}
	}
	now := s.now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Parts:     parts,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	partsJSON, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("encoding parts: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, parts, status, result, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, NULL, '', ?, ?)`,
		job.ID, job.Kind, string(partsJSON), string(job.Status),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting job: %w", err)
	}
	return job, nil
}

// Get loads a job by id.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	var (
		job                  Job
		partsJSON, status    string
		result               sql.NullString
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, parts, status, result, error, created_at, updated_at FROM jobs WHERE id = ?`, id,
	).Scan(&job.ID, &job.Kind, &partsJSON, &status, &result, &job.Error, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying job %s: %w", id, err)
	}

	job.Status = Status(status)
	if err := json.Unmarshal([]byte(partsJSON), &job.Parts); err != nil {
		return nil, fmt.Errorf("decoding parts of job %s: %w", id, err)
	}
	if result.Valid && result.String != "" {
		job.Result = json.RawMessage(result.String)
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &job, nil
}

// MarkRunning moves a job to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, StatusRunning, nil, "")
}

// Complete stores the JSON encoding of result and marks the job done.
func (s *Store) Complete(ctx context.Context, id string, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return s.Fail(ctx, id, fmt.Sprintf("encoding result: %v", err))
	}
	return s.update(ctx, id, StatusDone, data, "")
}

// Fail marks the job failed with msg.
func (s *Store) Fail(ctx context.Context, id, msg string) error {
	return s.update(ctx, id, StatusFailed, nil, msg)
}

func (s *Store) update(ctx context.Context, id string, status Status, result []byte, msg string) error {
	var res any
	if result != nil {
		res = string(result)
	}
	r, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, result = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), res, msg, s.now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
