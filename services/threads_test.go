package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/database"
)

type fakeConversationStore struct {
	conversations []database.Conversation
	listErr       error
	createErr     error
	updateErr     error
	deleteErr     error
	linkErr       error
	linkCalls     int
}

func (f *fakeConversationStore) ListConversations(_ context.Context, _ string) ([]database.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	conversations := make([]database.Conversation, len(f.conversations))
	copy(conversations, f.conversations)
	return conversations, nil
}

func (f *fakeConversationStore) CreateConversation(_ context.Context, _ string, params database.ConversationParams) (database.Conversation, error) {
	if f.createErr != nil {
		return database.Conversation{}, f.createErr
	}
	return database.Conversation{
		ID:               "conv-created",
		FullName:         params.FullName,
		Phone:            params.Phone,
		Email:            params.Email,
		Channel:          params.Channel,
		Status:           params.Status,
		ConversationDate: params.ConversationDate,
		LinkedJobs:       []string{},
	}, nil
}

func (f *fakeConversationStore) UpdateConversation(_ context.Context, _ string, _ string, _ database.ConversationParams) error {
	return f.updateErr
}

func (f *fakeConversationStore) DeleteConversation(_ context.Context, _ string, _ string) error {
	return f.deleteErr
}

func (f *fakeConversationStore) LinkConversationToJob(_ context.Context, _ string, _ string, _ string) error {
	f.linkCalls++
	return f.linkErr
}

func (f *fakeConversationStore) UnlinkConversationFromJob(_ context.Context, _ string, _ string, _ string) error {
	return f.linkErr
}

func sampleConversations() []database.Conversation {
	return []database.Conversation{
		{
			ID:               "c1",
			FullName:         "Sarah Johnson",
			Channel:          database.ChannelEmail,
			Status:           database.ConversationResponded,
			ConversationDate: "2023-05-14",
			LinkedJobs:       []string{},
		},
		{
			ID:               "c2",
			FullName:         "David Chen",
			Channel:          database.ChannelLinkedIn,
			Status:           database.ConversationPending,
			ConversationDate: "2023-05-10",
			LinkedJobs:       []string{},
		},
	}
}

func threadsWithData(t *testing.T, store *fakeConversationStore) *ThreadService {
	t.Helper()
	svc := NewThreadService(store, "user-1")
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestSelectClearsUnreadIdempotently(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	// Mark a thread unread by receiving state from a fresh load, then
	// flip it manually through the session-local flag.
	svc.mu.Lock()
	svc.threads[0].Unread = true
	svc.mu.Unlock()

	thread, found := svc.Select("c1")
	require.True(t, found)
	assert.False(t, thread.Unread)

	// Selecting again stays read; no flapping.
	thread, found = svc.Select("c1")
	require.True(t, found)
	assert.False(t, thread.Unread)
}

func TestSelectUnknownThread(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	_, found := svc.Select("missing")
	assert.False(t, found)
}

func TestSendMessageAppendsAndUpdatesSummary(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})
	fixed := time.Date(2023, 5, 20, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	msg, err := svc.SendMessage("c1", "Thanks, talk soon!")
	require.NoError(t, err)
	assert.Equal(t, SelfSender, msg.Sender)
	assert.Equal(t, "Thanks, talk soon!", msg.Content)
	assert.True(t, msg.Read)
	assert.Equal(t, fixed, msg.Timestamp)

	thread, _ := svc.Select("c1")
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "Thanks, talk soon!", thread.LastMessage)
	assert.Equal(t, "2023-05-20", thread.ConversationDate)
}

func TestSendMessageValidation(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	_, err := svc.SendMessage("c1", "")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.SendMessage("missing", "hi")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateThreadSeedsInitialMessage(t *testing.T) {
	store := &fakeConversationStore{}
	svc := NewThreadService(store, "user-1")

	thread, err := svc.CreateThread(context.Background(), NewThreadParams{
		ContactName:    "Priya Patel",
		Position:       "Recruiter",
		InitialMessage: "Hi, following up on the backend role.",
		Channel:        database.ChannelLinkedIn,
	})
	require.NoError(t, err)

	assert.Equal(t, "Priya Patel", thread.FullName)
	assert.Equal(t, "Recruiter", thread.Position)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "Hi, following up on the backend role.", thread.Messages[0].Content)
	assert.Equal(t, thread.Messages[0].Content, thread.LastMessage)
	assert.Equal(t, SelfSender, thread.Messages[0].Sender)

	threads := svc.Threads()
	require.Len(t, threads, 1)
	assert.Equal(t, "conv-created", threads[0].ID)
}

func TestCreateThreadValidation(t *testing.T) {
	svc := NewThreadService(&fakeConversationStore{}, "user-1")

	tests := []struct {
		name   string
		params NewThreadParams
	}{
		{"missing contact", NewThreadParams{Position: "Recruiter", InitialMessage: "hi"}},
		{"missing position", NewThreadParams{ContactName: "Sam", InitialMessage: "hi"}},
		{"missing message", NewThreadParams{ContactName: "Sam", Position: "Recruiter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateThread(context.Background(), tt.params)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestLinkToJobIsIdempotent(t *testing.T) {
	store := &fakeConversationStore{conversations: sampleConversations()}
	svc := threadsWithData(t, store)

	require.NoError(t, svc.LinkToJob(context.Background(), "c1", "job-1"))
	require.NoError(t, svc.LinkToJob(context.Background(), "c1", "job-1"))

	thread, _ := svc.Select("c1")
	assert.Equal(t, []string{"job-1"}, thread.LinkedJobs)
	assert.Equal(t, 2, store.linkCalls, "store sees both calls; the set stays deduplicated")
}

func TestUnlinkFromJob(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	require.NoError(t, svc.LinkToJob(context.Background(), "c1", "job-1"))
	require.NoError(t, svc.UnlinkFromJob(context.Background(), "c1", "job-1"))

	thread, _ := svc.Select("c1")
	assert.Empty(t, thread.LinkedJobs)
}

func TestLinkedJobsSurviveJobDeletion(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})
	require.NoError(t, svc.LinkToJob(context.Background(), "c1", "job-1"))

	// The board deleting job-1 does not reach into threads; the stale
	// reference stays until a user unlinks it.
	thread, _ := svc.Select("c1")
	assert.Equal(t, []string{"job-1"}, thread.LinkedJobs)
}

func TestLoadPreservesSessionState(t *testing.T) {
	store := &fakeConversationStore{conversations: sampleConversations()}
	svc := threadsWithData(t, store)

	_, err := svc.SendMessage("c1", "local only")
	require.NoError(t, err)

	require.NoError(t, svc.Load(context.Background()))

	thread, found := svc.Select("c1")
	require.True(t, found)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "local only", thread.LastMessage)
}

func TestLoadFailureLeavesEmptyListAndError(t *testing.T) {
	store := &fakeConversationStore{listErr: errors.New("connection refused")}
	svc := NewThreadService(store, "user-1")

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, svc.Threads())
	assert.Contains(t, svc.LoadError(), "connection refused")
}

func TestDeleteThread(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	require.NoError(t, svc.DeleteThread(context.Background(), "c1"))
	threads := svc.Threads()
	require.Len(t, threads, 1)
	assert.Equal(t, "c2", threads[0].ID)
}

func TestUpdateThreadRequiresContactName(t *testing.T) {
	svc := threadsWithData(t, &fakeConversationStore{conversations: sampleConversations()})

	err := svc.UpdateThread(context.Background(), "c1", database.ConversationParams{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
