package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/database"
)

// SelfSender identifies messages authored by the tracker's owner.
const SelfSender = "Me"

// Thread is a conversation record plus its session-local message state.
// Individual messages and the summary fields are not persisted; they live
// only for the lifetime of the service (the conversation record itself is
// stored).
type Thread struct {
	database.Conversation
	Position    string             `json:"position,omitempty"`
	LastMessage string             `json:"lastMessage,omitempty"`
	Unread      bool               `json:"unread"`
	Messages    []database.Message `json:"messages"`
}

// ThreadService owns conversation threads: store-backed CRUD for the
// conversation records, local-only append of message entries, and
// link/unlink to jobs.
type ThreadService struct {
	store  database.ConversationStore
	userID string

	mu       sync.Mutex
	threads  []Thread
	loading  bool
	loadErr  string
	onChange func()

	now func() time.Time
}

func NewThreadService(store database.ConversationStore, userID string) *ThreadService {
	return &ThreadService{
		store:   store,
		userID:  userID,
		threads: []Thread{},
		now:     time.Now,
	}
}

// OnChange registers a callback fired after each successful mutation.
func (s *ThreadService) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load fetches the conversation list. Message entries of already-loaded
// threads are preserved across reloads; records that disappeared remotely
// drop their local state.
func (s *ThreadService) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = ""
	s.mu.Unlock()

	conversations, err := s.store.ListConversations(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.threads = []Thread{}
		s.loadErr = err.Error()
		return fmt.Errorf("failed to load conversations: %w", err)
	}

	prior := make(map[string]Thread, len(s.threads))
	for _, t := range s.threads {
		prior[t.ID] = t
	}

	threads := make([]Thread, 0, len(conversations))
	for _, conv := range conversations {
		t := Thread{Conversation: conv, Messages: []database.Message{}}
		if p, ok := prior[conv.ID]; ok {
			t.Position = p.Position
			t.LastMessage = p.LastMessage
			t.Unread = p.Unread
			t.Messages = p.Messages
		}
		threads = append(threads, t)
	}
	s.threads = threads
	return nil
}

// Loading reports whether a Load is in flight.
func (s *ThreadService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadError returns the last load failure message, empty when none.
func (s *ThreadService) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Threads returns a copy of the thread list.
func (s *ThreadService) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	threads := make([]Thread, len(s.threads))
	copy(threads, s.threads)
	return threads
}

// Select returns a thread and clears its unread flag as a side effect.
// Repeated selection is idempotent; no remote write happens.
func (s *ThreadService) Select(threadID string) (Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(threadID)
	if idx < 0 {
		return Thread{}, false
	}
	s.threads[idx].Unread = false
	return s.threads[idx], true
}

// SendMessage appends a self-authored entry to the thread and updates its
// summary fields. Local-only; nothing is written to the store.
func (s *ThreadService) SendMessage(threadID, content string) (database.Message, error) {
	if content == "" {
		return database.Message{}, newValidationError("message content is required")
	}

	s.mu.Lock()
	idx := s.indexOf(threadID)
	if idx < 0 {
		s.mu.Unlock()
		return database.Message{}, database.ErrNotFound
	}

	now := s.now()
	msg := database.Message{
		ID:        uuid.NewString(),
		Sender:    SelfSender,
		Content:   content,
		Timestamp: now,
		Read:      true,
	}
	s.threads[idx].Messages = append(s.threads[idx].Messages, msg)
	s.threads[idx].LastMessage = content
	s.threads[idx].ConversationDate = now.Format("2006-01-02")
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return msg, nil
}

// NewThreadParams carries the fields required to open a thread.
type NewThreadParams struct {
	ContactName    string           `json:"contactName"`
	Position       string           `json:"position"`
	InitialMessage string           `json:"initialMessage"`
	Channel        database.Channel `json:"channel"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
}

// CreateThread persists a new conversation record and seeds the thread
// with the initial message as its sole entry and summary.
func (s *ThreadService) CreateThread(ctx context.Context, params NewThreadParams) (Thread, error) {
	if params.ContactName == "" {
		return Thread{}, newValidationError("contact name is required")
	}
	if params.Position == "" {
		return Thread{}, newValidationError("position is required")
	}
	if params.InitialMessage == "" {
		return Thread{}, newValidationError("initial message is required")
	}

	channel := params.Channel
	if channel == "" {
		channel = database.ChannelOther
	}

	now := s.now()
	conv, err := s.store.CreateConversation(ctx, s.userID, database.ConversationParams{
		FullName:         params.ContactName,
		Phone:            params.Phone,
		Email:            params.Email,
		Channel:          channel,
		Status:           database.ConversationPending,
		ConversationDate: now.Format("2006-01-02"),
	})
	if err != nil {
		return Thread{}, fmt.Errorf("failed to create conversation: %w", err)
	}

	thread := Thread{
		Conversation: conv,
		Position:     params.Position,
		LastMessage:  params.InitialMessage,
		Messages: []database.Message{{
			ID:        uuid.NewString(),
			Sender:    SelfSender,
			Content:   params.InitialMessage,
			Timestamp: now,
			Read:      true,
		}},
	}

	s.mu.Lock()
	s.threads = append([]Thread{thread}, s.threads...)
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return thread, nil
}

// UpdateThread applies an edit-form update to the conversation record.
func (s *ThreadService) UpdateThread(ctx context.Context, threadID string, params database.ConversationParams) error {
	if params.FullName == "" {
		return newValidationError("contact name is required")
	}

	if err := s.store.UpdateConversation(ctx, s.userID, threadID, params); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	s.mu.Lock()
	if idx := s.indexOf(threadID); idx >= 0 {
		conv := &s.threads[idx].Conversation
		conv.FullName = params.FullName
		conv.Phone = params.Phone
		conv.Email = params.Email
		conv.Channel = params.Channel
		conv.Status = params.Status
		conv.Notes = params.Notes
		conv.ConversationDate = params.ConversationDate
		conv.ResponseDate = params.ResponseDate
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

// DeleteThread removes the conversation remotely and locally.
func (s *ThreadService) DeleteThread(ctx context.Context, threadID string) error {
	if err := s.store.DeleteConversation(ctx, s.userID, threadID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.mu.Lock()
	if idx := s.indexOf(threadID); idx >= 0 {
		s.threads = append(s.threads[:idx], s.threads[idx+1:]...)
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

// LinkToJob records a weak reference from a thread to a job. The linked
// set is idempotent: duplicate calls never produce duplicate entries.
func (s *ThreadService) LinkToJob(ctx context.Context, threadID, jobID string) error {
	s.mu.Lock()
	idx := s.indexOf(threadID)
	s.mu.Unlock()
	if idx < 0 {
		return database.ErrNotFound
	}

	if err := s.store.LinkConversationToJob(ctx, s.userID, threadID, jobID); err != nil {
		return fmt.Errorf("failed to link conversation to job: %w", err)
	}

	s.mu.Lock()
	if idx := s.indexOf(threadID); idx >= 0 {
		linked := s.threads[idx].LinkedJobs
		exists := false
		for _, id := range linked {
			if id == jobID {
				exists = true
				break
			}
		}
		if !exists {
			s.threads[idx].LinkedJobs = append(linked, jobID)
		}
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

// UnlinkFromJob removes a thread-to-job reference.
func (s *ThreadService) UnlinkFromJob(ctx context.Context, threadID, jobID string) error {
	if err := s.store.UnlinkConversationFromJob(ctx, s.userID, threadID, jobID); err != nil {
		return fmt.Errorf("failed to unlink conversation from job: %w", err)
	}

	s.mu.Lock()
	if idx := s.indexOf(threadID); idx >= 0 {
		linked := s.threads[idx].LinkedJobs
		for i, id := range linked {
			if id == jobID {
				s.threads[idx].LinkedJobs = append(linked[:i], linked[i+1:]...)
				break
			}
		}
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

// indexOf locates a thread by id. Caller must hold mu.
func (s *ThreadService) indexOf(threadID string) int {
	for i := range s.threads {
		if s.threads[i].ID == threadID {
			return i
		}
	}
	return -1
}
