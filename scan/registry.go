package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/screenerhq/scan-server/internal/errors"
)

// RunFunc executes one scan and returns the produced report path.
type RunFunc func(ctx context.Context, params Params, creds Credentials, progress ProgressFunc) (string, error)

// Registry owns every in-flight and completed scan job. It is the sole
// writer of job state; the executing background task reports back only
// through the registry's own update path, so a polling reader never sees a
// torn update. Concurrency is capped by an admission semaphore.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string

	run     RunFunc
	sem     *semaphore.Weighted
	baseCtx context.Context
	nowTime func() time.Time
}

// RegistryOption modifies a Registry instance.
type RegistryOption func(*Registry)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

// NewRegistry creates a job registry. baseCtx bounds every scan's lifetime:
// cancelling it (host shutdown) kills running scanner processes.
func NewRegistry(baseCtx context.Context, run RunFunc, maxConcurrent int64, options ...RegistryOption) *Registry {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	r := &Registry{
		jobs:    make(map[string]*Job),
		run:     run,
		sem:     semaphore.NewWeighted(maxConcurrent),
		baseCtx: baseCtx,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Create allocates a new job, transitions it to Running and schedules the
// scan in the background. It returns the job snapshot without waiting.
func (r *Registry) Create(params Params, creds Credentials) Job {
	job := &Job{
		ID:          uuid.NewString()[:8],
		Status:      StatusQueued,
		CurrentTask: "Initializing...",
		CreatedAt:   r.nowTime(),
		Params:      params,
	}

	r.mu.Lock()
	job.Status = StatusRunning
	r.jobs[job.ID] = job
	r.order = append(r.order, job.ID)
	snapshot := *job
	r.mu.Unlock()

	log.Info().Str("job_id", job.ID).Strs("services", params.Services).Strs("regions", params.Regions).Msg("scan job created")

	go r.execute(job.ID, params, creds)

	return snapshot
}

func (r *Registry) execute(id string, params Params, creds Credentials) {
	r.progress(id, 0, "Waiting for scan slot...")
	if err := r.sem.Acquire(r.baseCtx, 1); err != nil {
		r.fail(id, "server shut down before the scan could start")
		return
	}
	defer r.sem.Release(1)

	reportPath, err := r.run(r.baseCtx, params, creds, func(pct int, task string) {
		r.progress(id, pct, task)
	})
	if err != nil {
		r.fail(id, err.Error())
		return
	}
	r.complete(id, reportPath)
}

// progress raises a running job's progress. Progress is monotonically
// non-decreasing; a stale lower percentage only updates the task label.
func (r *Registry) progress(id string, pct int, task string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	if pct > job.Progress {
		job.Progress = pct
	}
	if task != "" {
		job.CurrentTask = task
	}
}

func (r *Registry) complete(id, reportPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := r.nowTime()
	job.Status = StatusCompleted
	job.Progress = 100
	job.CurrentTask = "Scan completed successfully"
	job.CompletedAt = &now
	job.ReportPath = reportPath

	log.Info().Str("job_id", id).Str("report_path", reportPath).Msg("scan job completed")
}

func (r *Registry) fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := r.nowTime()
	job.Status = StatusFailed
	job.CurrentTask = "Scan failed"
	job.CompletedAt = &now
	job.Error = message

	log.Warn().Str("job_id", id).Str("error", message).Msg("scan job failed")
}

// Get returns a snapshot of one job.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, errors.Wrapf(errors.ErrNotFound, "job %s", id)
	}
	return *job, nil
}

// List returns snapshots of all jobs in creation order.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.jobs[id])
	}
	return out
}

// Completed returns snapshots of completed jobs in creation order.
func (r *Registry) Completed() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Job
	for _, id := range r.order {
		if job := r.jobs[id]; job.Status == StatusCompleted {
			out = append(out, *job)
		}
	}
	return out
}
