package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memJob struct {
	job       Job
	salaryMin *int64
	salaryMax *int64
	userID    string
	createdAt time.Time
}

type memConversation struct {
	conv   Conversation
	userID string
}

// MemStore is the ephemeral Store implementation used in demo mode.
// Everything lives in memory and vanishes on shutdown.
type MemStore struct {
	mu            sync.Mutex
	jobs          []memJob
	conversations []memConversation
	links         map[string]map[string]bool // conversation id -> set of job ids
}

func NewMemStore() *MemStore {
	return &MemStore{links: make(map[string]map[string]bool)}
}

func (s *MemStore) ListJobs(ctx context.Context, userID string) ([]Job, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := []Job{}
	// jobs slice is kept newest-first already
	for _, j := range s.jobs {
		if j.userID == userID {
			jobs = append(jobs, j.job)
		}
	}
	return jobs, nil
}

func (s *MemStore) CreateJob(ctx context.Context, userID string, params JobParams) (Job, error) {
	if userID == "" {
		return Job{}, ErrUnauthenticated
	}

	status := params.Status
	if !ValidStatus(status) {
		status = StatusInterviewObtained
	}
	applicationDate := params.ApplicationDate
	if applicationDate == "" {
		applicationDate = time.Now().Format("2006-01-02")
	}
	techStack := params.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	job := Job{
		ID:              uuid.NewString(),
		Company:         params.Company,
		Position:        params.Position,
		Salary:          FormatSalary(params.SalaryMin, params.SalaryMax),
		TechStack:       techStack,
		WorkMode:        params.WorkMode,
		ApplicationDate: applicationDate,
		Status:          status,
		Notes:           params.Notes,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append([]memJob{{
		job:       job,
		salaryMin: params.SalaryMin,
		salaryMax: params.SalaryMax,
		userID:    userID,
		createdAt: time.Now(),
	}}, s.jobs...)
	return job, nil
}

func (s *MemStore) UpdateJobStatus(ctx context.Context, userID, jobID string, status Status) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].job.ID == jobID && s.jobs[i].userID == userID {
			s.jobs[i].job.Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) UpdateJobFields(ctx context.Context, userID, jobID string, update JobUpdate) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].job.ID != jobID || s.jobs[i].userID != userID {
			continue
		}
		if update.Position != nil {
			s.jobs[i].job.Position = *update.Position
		}
		if update.SalaryMin != nil {
			s.jobs[i].salaryMin = update.SalaryMin
		}
		if update.SalaryMax != nil {
			s.jobs[i].salaryMax = update.SalaryMax
		}
		if update.SalaryMin != nil || update.SalaryMax != nil {
			s.jobs[i].job.Salary = FormatSalary(s.jobs[i].salaryMin, s.jobs[i].salaryMax)
		}
		if update.TechStack != nil {
			s.jobs[i].job.TechStack = *update.TechStack
		}
		if update.WorkMode != nil {
			s.jobs[i].job.WorkMode = *update.WorkMode
		}
		if update.Notes != nil {
			s.jobs[i].job.Notes = *update.Notes
		}
		return nil
	}
	return ErrNotFound
}

func (s *MemStore) DeleteJob(ctx context.Context, userID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].job.ID == jobID && s.jobs[i].userID == userID {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			// Link rows referencing the job are left in place.
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := []Conversation{}
	for _, c := range s.conversations {
		if c.userID != userID {
			continue
		}
		conv := c.conv
		conv.LinkedJobs = s.linkedJobs(conv.ID)
		conversations = append(conversations, conv)
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].ConversationDate > conversations[j].ConversationDate
	})
	return conversations, nil
}

func (s *MemStore) CreateConversation(ctx context.Context, userID string, params ConversationParams) (Conversation, error) {
	if userID == "" {
		return Conversation{}, ErrUnauthenticated
	}

	status := params.Status
	if status == "" {
		status = ConversationPending
	}
	convDate := params.ConversationDate
	if convDate == "" {
		convDate = time.Now().Format("2006-01-02")
	}

	conv := Conversation{
		ID:               uuid.NewString(),
		FullName:         params.FullName,
		Phone:            params.Phone,
		Email:            params.Email,
		Channel:          params.Channel,
		Status:           status,
		Notes:            params.Notes,
		ConversationDate: convDate,
		ResponseDate:     params.ResponseDate,
		LinkedJobs:       []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append([]memConversation{{conv: conv, userID: userID}}, s.conversations...)
	return conv, nil
}

func (s *MemStore) UpdateConversation(ctx context.Context, userID, convID string, params ConversationParams) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].conv.ID != convID || s.conversations[i].userID != userID {
			continue
		}
		conv := &s.conversations[i].conv
		conv.FullName = params.FullName
		conv.Phone = params.Phone
		conv.Email = params.Email
		conv.Channel = params.Channel
		conv.Status = params.Status
		conv.Notes = params.Notes
		conv.ConversationDate = params.ConversationDate
		conv.ResponseDate = params.ResponseDate
		return nil
	}
	return ErrNotFound
}

func (s *MemStore) DeleteConversation(ctx context.Context, userID, convID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].conv.ID == convID && s.conversations[i].userID == userID {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			delete(s.links, convID)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) LinkConversationToJob(ctx context.Context, userID, convID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[convID] == nil {
		s.links[convID] = make(map[string]bool)
	}
	s.links[convID][jobID] = true
	return nil
}

func (s *MemStore) UnlinkConversationFromJob(ctx context.Context, userID, convID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links[convID], jobID)
	return nil
}

// linkedJobs returns the job ids linked to a conversation. Order is
// unspecified; the links are a set. Caller must hold mu.
func (s *MemStore) linkedJobs(convID string) []string {
	ids := []string{}
	for id := range s.links[convID] {
		ids = append(ids, id)
	}
	return ids
}
