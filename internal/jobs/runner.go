// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRunTimeout bounds one background run.
const DefaultRunTimeout = 3 * time.Minute

// Func does the work of a job and returns a JSON-encodable result.
type Func func(ctx context.Context) (any, error)

// Runner starts jobs on their own goroutines and records the outcome in a
// Store. The caller gets the job id back before the work begins.
type Runner struct {
	store   *Store
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewRunner creates a Runner. A non-positive timeout uses DefaultRunTimeout.
func NewRunner(store *Store, timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: store, timeout: timeout, logger: logger}
}

// Submit records a pending job and runs fn in the background. The run
// outlives ctx's cancellation but not the runner timeout.
func (r *Runner) Submit(ctx context.Context, kind string, parts []string, fn Func) (*Job, error) {
	job, err := r.store.Create(ctx, kind, parts)
	if err != nil {
		return nil, err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), job.ID, fn)
	}()
	return job, nil
}

// Get returns the current state of a job.
func (r *Runner) Get(ctx context.Context, id string) (*Job, error) {
	return r.store.Get(ctx, id)
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id string, fn Func) {
	log := r.logger.With(zap.String("job_id", id))
	if err := r.store.MarkRunning(ctx, id); err != nil {
		log.Error("marking job running", zap.Error(err))
		return
	}

	start := time.Now()
	result, err := r.call(ctx, fn)
	if err != nil {
		log.Warn("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if ferr := r.store.Fail(ctx, id, err.Error()); ferr != nil {
			log.Error("recording job failure", zap.Error(ferr))
		}
		return
	}
	if err := r.store.Complete(ctx, id, result); err != nil {
		log.Error("recording job result", zap.Error(err))
		return
	}
	log.Info("job done", zap.Duration("elapsed", time.Since(start)))
}

func (r *Runner) call(ctx context.Context, fn Func) (result any, err error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(runCtx)
}
