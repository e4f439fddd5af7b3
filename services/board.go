package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jobdeck/jobdeck/database"
)

// Column is one board bucket: the ordered jobs sharing one status.
type Column struct {
	ID    database.Status `json:"id"`
	Title string          `json:"title"`
	Jobs  []database.Job  `json:"jobs"`
}

// BoardService owns the in-memory job list for one user and reconciles
// board mutations with the store. Views never touch the list directly.
type BoardService struct {
	store  database.JobStore
	userID string

	mu      sync.Mutex
	jobs    []database.Job
	loading bool
	loadErr string
	seq     map[string]uint64 // per-job move request sequence

	// onChange, when set, is invoked after every successful mutation
	// (used to push board updates over the WebSocket hub).
	onChange func()
}

func NewBoardService(store database.JobStore, userID string) *BoardService {
	return &BoardService{
		store:  store,
		userID: userID,
		jobs:   []database.Job{},
		seq:    make(map[string]uint64),
	}
}

// OnChange registers a callback fired after each successful mutation.
func (s *BoardService) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load fetches the full job list. On failure the list is left empty and
// the error state is set, distinct from an empty result.
func (s *BoardService) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = ""
	s.mu.Unlock()

	jobs, err := s.store.ListJobs(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.jobs = []database.Job{}
		s.loadErr = err.Error()
		return fmt.Errorf("failed to load jobs: %w", err)
	}
	s.jobs = jobs
	return nil
}

// Loading reports whether a Load is in flight.
func (s *BoardService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadError returns the last load failure message, empty when none.
func (s *BoardService) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Jobs returns a copy of the current job list.
func (s *BoardService) Jobs() []database.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]database.Job, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

// Columns partitions the current list into the four fixed buckets.
// Derivation is pure: every job lands in exactly one bucket, in the same
// relative order as the source list, and all four buckets always exist.
func (s *BoardService) Columns() []Column {
	s.mu.Lock()
	defer s.mu.Unlock()

	columns := make([]Column, 0, len(database.AllStatuses))
	for _, status := range database.AllStatuses {
		col := Column{
			ID:    status,
			Title: database.ColumnTitles[status],
			Jobs:  []database.Job{},
		}
		for _, job := range s.jobs {
			if job.Status == status {
				col.Jobs = append(col.Jobs, job)
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// MoveJob transitions a job to another status. Unknown ids and
// same-status moves are no-ops with no remote call. A resolved remote
// confirmation is discarded when a newer move for the same job has been
// issued in the meantime, so out-of-order resolutions cannot clobber a
// later move.
func (s *BoardService) MoveJob(ctx context.Context, jobID string, status database.Status) error {
	if !database.ValidStatus(status) {
		return newValidationError(fmt.Sprintf("unknown status %q", status))
	}

	s.mu.Lock()
	idx := s.indexOf(jobID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if s.jobs[idx].Status == status {
		s.mu.Unlock()
		return nil
	}
	s.seq[jobID]++
	seq := s.seq[jobID]
	s.mu.Unlock()

	err := s.store.UpdateJobStatus(ctx, s.userID, jobID, status)

	s.mu.Lock()
	stale := s.seq[jobID] != seq
	if err == nil && !stale {
		if idx := s.indexOf(jobID); idx >= 0 {
			s.jobs[idx].Status = status
		}
	}
	onChange := s.onChange
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to move job: %w", err)
	}
	if !stale && onChange != nil {
		onChange()
	}
	return nil
}

// AddJob creates a job remotely and, on success, prepends it locally.
func (s *BoardService) AddJob(ctx context.Context, params database.JobParams) (database.Job, error) {
	if params.Company == "" {
		return database.Job{}, newValidationError("company is required")
	}

	job, err := s.store.CreateJob(ctx, s.userID, params)
	if err != nil {
		return database.Job{}, fmt.Errorf("failed to add job: %w", err)
	}

	s.mu.Lock()
	s.jobs = append([]database.Job{job}, s.jobs...)
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return job, nil
}

// UpdateJob applies a partial edit from the detail view.
func (s *BoardService) UpdateJob(ctx context.Context, jobID string, update database.JobUpdate) error {
	s.mu.Lock()
	idx := s.indexOf(jobID)
	s.mu.Unlock()
	if idx < 0 {
		return nil
	}

	if err := s.store.UpdateJobFields(ctx, s.userID, jobID, update); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	// Refetch to pick up store-derived fields like the salary string.
	if err := s.Load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	onChange := s.onChange
	s.mu.Unlock()
	if onChange != nil {
		onChange()
	}
	return nil
}

// DeleteJob removes a job locally before remote confirmation. The remote
// delete is best-effort: a failure is surfaced but the local removal is
// not rolled back.
func (s *BoardService) DeleteJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	idx := s.indexOf(jobID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	delete(s.seq, jobID)
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}

	if err := s.store.DeleteJob(ctx, s.userID, jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// FindByCompany returns the first job whose company matches, ignoring
// case. Used by chat-driven lookups.
func (s *BoardService) FindByCompany(company string) (database.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if strings.EqualFold(job.Company, company) {
			return job, true
		}
	}
	return database.Job{}, false
}

// StatusCounts returns how many jobs sit in each bucket.
func (s *BoardService) StatusCounts() map[database.Status]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[database.Status]int, len(database.AllStatuses))
	for _, status := range database.AllStatuses {
		counts[status] = 0
	}
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts
}

// indexOf locates a job by id. Caller must hold mu.
func (s *BoardService) indexOf(jobID string) int {
	for i := range s.jobs {
		if s.jobs[i].ID == jobID {
			return i
		}
	}
	return -1
}
