// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/partfinder/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.JobsConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job, err := s.Create(ctx, "alternatives", []string{"LM317"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.False(t, job.Finished())

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"LM317"}, got.Parts)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.Result)
	assert.WithinDuration(t, job.CreatedAt, got.CreatedAt, time.Millisecond)

	require.NoError(t, s.MarkRunning(ctx, job.ID))
	got, err = s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, s.Complete(ctx, job.ID, map[string]string{"markdown": "## LM317"}))
	got, err = s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.True(t, got.Finished())
	assert.JSONEq(t, `{"markdown":"## LM317"}`, string(got.Result))
}

func TestStoreFail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job, err := s.Create(ctx, "alternatives", []string{"NE555"})
	require.NoError(t, err)
	require.NoError(t, s.Fail(ctx, job.ID, "generation failed"))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "generation failed", got.Error)
}

func TestStoreNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.MarkRunning(ctx, "missing"), ErrNotFound)
}

func TestStoreFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "jobs.db")
	s, err := NewStore(types.JobsConfig{DSN: dsn})
	require.NoError(t, err)
	job, err := s.Create(context.Background(), "alternatives", []string{"LM317"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStore(types.JobsConfig{DSN: dsn})
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestRunner(t *testing.T) {
	tests := []struct {
		name      string
		timeout   time.Duration
		fn        Func
		want      Status
		wantError string
		wantJSON  string
	}{
		{
			name:     "done",
			fn:       func(context.Context) (any, error) { return map[string]int{"n": 1}, nil },
			want:     StatusDone,
			wantJSON: `{"n":1}`,
		},
		{
			name:      "error",
			fn:        func(context.Context) (any, error) { return nil, errors.New("search unavailable") },
			want:      StatusFailed,
			wantError: "search unavailable",
		},
		{
			name:    "timeout",
			timeout: 10 * time.Millisecond,
			fn: func(ctx context.Context) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			want:      StatusFailed,
			wantError: "context deadline exceeded",
		},
		{
			name:      "panic",
			fn:        func(context.Context) (any, error) { panic("boom") },
			want:      StatusFailed,
			wantError: "job panicked: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(testStore(t), tt.timeout, zaptest.NewLogger(t))
			job, err := r.Submit(context.Background(), "alternatives", []string{"LM317"}, tt.fn)
			require.NoError(t, err)
			r.Wait()

			got, err := r.Get(context.Background(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.wantError, got.Error)
			if tt.wantJSON != "" {
				assert.JSONEq(t, tt.wantJSON, string(got.Result))
			}
		})
	}
}

func TestRunnerOutlivesRequestContext(t *testing.T) {
	r := NewRunner(testStore(t), time.Second, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	job, err := r.Submit(ctx, "alternatives", []string{"LM317"}, func(runCtx context.Context) (any, error) {
		<-release
		return "ok", runCtx.Err()
	})
	require.NoError(t, err)
	cancel()
	close(release)
	r.Wait()

	got, err := r.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	var s string
	require.NoError(t, json.Unmarshal(got.Result, &s))
	assert.Equal(t, "ok", s)
}
