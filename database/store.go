package database

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated is returned when a mutation is attempted
	// without an active session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when an operation references a record
	// that no longer exists.
	ErrNotFound = errors.New("record not found")
)

// JobStore is the persistence boundary for the applications collection.
type JobStore interface {
	ListJobs(ctx context.Context, userID string) ([]Job, error)
	CreateJob(ctx context.Context, userID string, params JobParams) (Job, error)
	UpdateJobStatus(ctx context.Context, userID, jobID string, status Status) error
	UpdateJobFields(ctx context.Context, userID, jobID string, update JobUpdate) error
	DeleteJob(ctx context.Context, userID, jobID string) error
}

// ConversationStore is the persistence boundary for the conversations
// collection and its job links.
type ConversationStore interface {
	ListConversations(ctx context.Context, userID string) ([]Conversation, error)
	CreateConversation(ctx context.Context, userID string, params ConversationParams) (Conversation, error)
	UpdateConversation(ctx context.Context, userID, convID string, params ConversationParams) error
	DeleteConversation(ctx context.Context, userID, convID string) error
	LinkConversationToJob(ctx context.Context, userID, convID, jobID string) error
	UnlinkConversationFromJob(ctx context.Context, userID, convID, jobID string) error
}

// Store is the full persistence boundary. Two implementations exist:
// SQLStore (persisted) and MemStore (ephemeral demo mode). The
// implementation is chosen once at startup, never branched per call.
type Store interface {
	JobStore
	ConversationStore
}
