package jobs

import (
	"context"
	"sync"
	"time"

	"videosnatch-server/internal/models"
)

// awaitPollInterval is how often Await re-checks for a job that has not been
// created yet. The download POST and the progress subscription race, so the
// job may appear at any point inside the grace window.
const awaitPollInterval = 100 * time.Millisecond

// Registry holds the in-memory state of all active download jobs. It is the
// only shared mutable structure in the service: one worker writes per job,
// progress subscribers only read.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
	ttl  time.Duration
	now  func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		jobs: make(map[string]*models.Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a job under the given id. Idempotent: a second call with
// the same id returns the existing entry unchanged, which protects against
// the worker and a subscriber both triggering creation.
func (r *Registry) Create(id string) models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		return *job
	}
	job := &models.Job{
		ID:        id,
		Status:    models.StatusPending,
		CreatedAt: r.now(),
	}
	r.jobs[id] = job
	return *job
}

// Update advances a job's state. Status transitions are forward-only and a
// percentage can never regress; a regressing write is clamped to the previous
// value. Terminal states set the percentage directly (complete pins it to
// 100, error keeps whatever was reported).
func (r *Registry) Update(id string, status models.Status, percentage int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		// Expired or never created; nothing to update.
		return
	}
	if !job.Status.CanAdvanceTo(status) {
		return
	}

	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	if status == models.StatusComplete {
		percentage = 100
	}
	if !status.Terminal() && percentage < job.Percentage {
		percentage = job.Percentage
	}

	job.Status = status
	job.Percentage = percentage
	job.Message = message
}

// Get returns a snapshot of the job, so callers never observe a torn write.
func (r *Registry) Get(id string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// Await blocks until a job with the given id exists, the grace window
// elapses, or ctx is done. This is the rendezvous for the subscribe-vs-POST
// race: a subscription may arrive before the download request that creates
// the job.
func (r *Registry) Await(ctx context.Context, id string, grace time.Duration) (models.Job, bool) {
	if job, ok := r.Get(id); ok {
		return job, true
	}

	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	tick := time.NewTicker(awaitPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.Job{}, false
		case <-deadline.C:
			return models.Job{}, false
		case <-tick.C:
			if job, ok := r.Get(id); ok {
				return job, true
			}
		}
	}
}

// Expire removes every job older than the TTL, whatever its status, and
// returns how many were removed. Bounds memory for abandoned jobs.
func (r *Registry) Expire() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, job := range r.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
