package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/database"
)

type fakeJobStore struct {
	mu          sync.Mutex
	jobs        []database.Job
	listErr     error
	updateErr   error
	createErr   error
	deleteErr   error
	updateCalls int
	deleteCalls int

	// beforeUpdate, when set, runs inside UpdateJobStatus before it
	// returns; used to simulate slow remote confirmations.
	beforeUpdate func(jobID string, status database.Status)
}

func (f *fakeJobStore) ListJobs(_ context.Context, _ string) ([]database.Job, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	jobs := make([]database.Job, len(f.jobs))
	copy(jobs, f.jobs)
	return jobs, nil
}

func (f *fakeJobStore) CreateJob(_ context.Context, _ string, params database.JobParams) (database.Job, error) {
	if f.createErr != nil {
		return database.Job{}, f.createErr
	}
	return database.Job{
		ID:      "created-id",
		Company: params.Company,
		Status:  database.StatusInterviewObtained,
		Salary:  database.SalaryNotSpecified,
	}, nil
}

func (f *fakeJobStore) UpdateJobStatus(_ context.Context, _ string, jobID string, status database.Status) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate(jobID, status)
	}
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	return f.updateErr
}

func (f *fakeJobStore) UpdateJobFields(_ context.Context, _ string, _ string, _ database.JobUpdate) error {
	return f.updateErr
}

func (f *fakeJobStore) DeleteJob(_ context.Context, _ string, _ string) error {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeJobStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls
}

func boardWithJobs(t *testing.T, store *fakeJobStore) *BoardService {
	t.Helper()
	board := NewBoardService(store, "user-1")
	require.NoError(t, board.Load(context.Background()))
	return board
}

func sampleJobs() []database.Job {
	return []database.Job{
		{ID: "j1", Company: "Google", Status: database.StatusInterviewObtained},
		{ID: "j2", Company: "Microsoft", Status: database.StatusInProcess},
		{ID: "j3", Company: "Amazon", Status: database.StatusInterviewObtained},
	}
}

func TestColumnsPartitionEveryJobExactlyOnce(t *testing.T) {
	board := boardWithJobs(t, &fakeJobStore{jobs: sampleJobs()})

	columns := board.Columns()
	require.Len(t, columns, 4)

	seen := map[string]int{}
	for _, col := range columns {
		for _, job := range col.Jobs {
			seen[job.ID]++
			assert.Equal(t, col.ID, job.Status, "bucket id must equal member status")
		}
	}
	for _, job := range sampleJobs() {
		assert.Equal(t, 1, seen[job.ID], "job %s must appear in exactly one bucket", job.ID)
	}
}

func TestColumnsPreserveSourceOrderAndExistWhenEmpty(t *testing.T) {
	board := boardWithJobs(t, &fakeJobStore{jobs: sampleJobs()})

	columns := board.Columns()
	byID := map[database.Status]Column{}
	for _, col := range columns {
		byID[col.ID] = col
	}

	interview := byID[database.StatusInterviewObtained]
	require.Len(t, interview.Jobs, 2)
	assert.Equal(t, "j1", interview.Jobs[0].ID)
	assert.Equal(t, "j3", interview.Jobs[1].ID)

	assert.NotNil(t, byID[database.StatusAccepted].Jobs)
	assert.Empty(t, byID[database.StatusAccepted].Jobs)
	assert.NotNil(t, byID[database.StatusRejected].Jobs)
}

func TestMoveJobSameStatusIsNoOp(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs()}
	board := boardWithJobs(t, store)

	err := board.MoveJob(context.Background(), "j1", database.StatusInterviewObtained)
	require.NoError(t, err)
	assert.Equal(t, 0, store.updateCount(), "same-status move must not hit the store")
}

func TestMoveJobUnknownIDIsNoOp(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs()}
	board := boardWithJobs(t, store)

	err := board.MoveJob(context.Background(), "missing", database.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, 0, store.updateCount())
}

func TestMoveJobAppliesOnSuccess(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs()}
	board := boardWithJobs(t, store)

	err := board.MoveJob(context.Background(), "j1", database.StatusAccepted)
	require.NoError(t, err)

	jobs := board.Jobs()
	assert.Equal(t, database.StatusAccepted, jobs[0].Status)
}

func TestMoveJobFailureLeavesStatusUnchanged(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs(), updateErr: errors.New("network down")}
	board := boardWithJobs(t, store)

	err := board.MoveJob(context.Background(), "j1", database.StatusAccepted)
	require.Error(t, err)

	jobs := board.Jobs()
	assert.Equal(t, database.StatusInterviewObtained, jobs[0].Status)
}

func TestMoveJobInvalidStatusRejected(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs()}
	board := boardWithJobs(t, store)

	err := board.MoveJob(context.Background(), "j1", "archived")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, store.updateCount())
}

func TestMoveJobStaleResolutionDiscarded(t *testing.T) {
	firstInFlight := make(chan struct{})
	releaseFirst := make(chan struct{})

	store := &fakeJobStore{jobs: sampleJobs()}
	var once sync.Once
	store.beforeUpdate = func(_ string, status database.Status) {
		// Only the first move blocks; the second resolves immediately.
		if status == database.StatusInProcess {
			once.Do(func() {
				close(firstInFlight)
				<-releaseFirst
			})
		}
	}
	board := boardWithJobs(t, store)

	done := make(chan error, 1)
	go func() {
		done <- board.MoveJob(context.Background(), "j1", database.StatusInProcess)
	}()

	<-firstInFlight
	require.NoError(t, board.MoveJob(context.Background(), "j1", database.StatusAccepted))

	// The first request resolves after the second; its confirmation is
	// stale and must not clobber the later move.
	close(releaseFirst)
	require.NoError(t, <-done)

	jobs := board.Jobs()
	assert.Equal(t, database.StatusAccepted, jobs[0].Status)
}

func TestLoadFailureLeavesEmptyListAndErrorState(t *testing.T) {
	store := &fakeJobStore{listErr: errors.New("connection refused")}
	board := NewBoardService(store, "user-1")

	err := board.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, board.Jobs())
	assert.Contains(t, board.LoadError(), "connection refused")
	assert.False(t, board.Loading())
}

func TestAddJobPrependsOnSuccess(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs()}
	board := boardWithJobs(t, store)

	job, err := board.AddJob(context.Background(), database.JobParams{Company: "Netflix"})
	require.NoError(t, err)
	assert.Equal(t, "created-id", job.ID)

	jobs := board.Jobs()
	require.Len(t, jobs, 4)
	assert.Equal(t, "Netflix", jobs[0].Company)
}

func TestAddJobFailureLeavesListIntact(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs(), createErr: errors.New("boom")}
	board := boardWithJobs(t, store)

	_, err := board.AddJob(context.Background(), database.JobParams{Company: "Netflix"})
	require.Error(t, err)
	assert.Len(t, board.Jobs(), 3)
}

func TestAddJobRequiresCompany(t *testing.T) {
	store := &fakeJobStore{}
	board := NewBoardService(store, "user-1")

	_, err := board.AddJob(context.Background(), database.JobParams{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDeleteJobIsOptimistic(t *testing.T) {
	store := &fakeJobStore{jobs: sampleJobs(), deleteErr: errors.New("boom")}
	board := boardWithJobs(t, store)

	err := board.DeleteJob(context.Background(), "j1")
	require.Error(t, err)

	// Best-effort delete: local removal is not rolled back on failure.
	jobs := board.Jobs()
	assert.Len(t, jobs, 2)
	for _, col := range board.Columns() {
		for _, job := range col.Jobs {
			assert.NotEqual(t, "j1", job.ID)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	board := boardWithJobs(t, &fakeJobStore{jobs: sampleJobs()})

	counts := board.StatusCounts()
	assert.Equal(t, 2, counts[database.StatusInterviewObtained])
	assert.Equal(t, 1, counts[database.StatusInProcess])
	assert.Equal(t, 0, counts[database.StatusAccepted])
	assert.Equal(t, 0, counts[database.StatusRejected])
}

func TestFindByCompanyIgnoresCase(t *testing.T) {
	board := boardWithJobs(t, &fakeJobStore{jobs: sampleJobs()})

	job, found := board.FindByCompany("google")
	require.True(t, found)
	assert.Equal(t, "j1", job.ID)

	_, found = board.FindByCompany("Netflix")
	assert.False(t, found)
}
