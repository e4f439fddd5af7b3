package services

import (
	"context"
	"sync"

	"github.com/jobdeck/jobdeck/database"
)

// Workspace is one user's pair of state managers. The managers own their
// in-memory lists exclusively; handlers only call their operations.
type Workspace struct {
	Board   *BoardService
	Threads *ThreadService
}

// Registry hands out one Workspace per authenticated user, created and
// loaded on first access. Mutations are pushed to the user's WebSocket
// connections through the hub.
type Registry struct {
	store database.Store
	hub   *Hub

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(store database.Store, hub *Hub) *Registry {
	return &Registry{
		store:      store,
		hub:        hub,
		workspaces: make(map[string]*Workspace),
	}
}

// Workspace returns the user's managers, loading their state from the
// store on first access.
func (r *Registry) Workspace(ctx context.Context, userID string) (*Workspace, error) {
	r.mu.Lock()
	ws, ok := r.workspaces[userID]
	r.mu.Unlock()
	if ok {
		return ws, nil
	}

	board := NewBoardService(r.store, userID)
	threads := NewThreadService(r.store, userID)
	if r.hub != nil {
		board.OnChange(func() {
			r.hub.Notify(userID, WebSocketMessage{Type: EventJobs})
		})
		threads.OnChange(func() {
			r.hub.Notify(userID, WebSocketMessage{Type: EventConversations})
		})
	}

	if err := board.Load(ctx); err != nil {
		return nil, err
	}
	if err := threads.Load(ctx); err != nil {
		return nil, err
	}

	ws = &Workspace{Board: board, Threads: threads}
	r.mu.Lock()
	// Another request may have raced us here; keep the first one in.
	if existing, ok := r.workspaces[userID]; ok {
		ws = existing
	} else {
		r.workspaces[userID] = ws
	}
	r.mu.Unlock()
	return ws, nil
}
