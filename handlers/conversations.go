package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/services"
)

// ConversationsHandler serves recruiter threads: CRUD, message entries
// and job links.
type ConversationsHandler struct {
	registry *services.Registry
}

func NewConversationsHandler(registry *services.Registry) *ConversationsHandler {
	return &ConversationsHandler{registry: registry}
}

// ListConversations returns all threads, newest first.
func (h *ConversationsHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"conversations": ws.Threads.Threads(),
	})
}

// CreateConversation opens a new thread from the new-conversation form.
func (h *ConversationsHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	var params services.NewThreadParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	thread, err := ws.Threads.CreateThread(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status":       "success",
		"conversation": thread,
	})
}

// SelectConversation returns one thread and clears its unread flag.
func (h *ConversationsHandler) SelectConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	convID := mux.Vars(r)["id"]

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	thread, found := ws.Threads.Select(convID)
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"conversation": thread,
	})
}

// UpdateConversation applies the edit form to a thread's record.
func (h *ConversationsHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	convID := mux.Vars(r)["id"]

	var params database.ConversationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := ws.Threads.UpdateThread(r.Context(), convID, params); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// DeleteConversation removes a thread.
func (h *ConversationsHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	convID := mux.Vars(r)["id"]

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := ws.Threads.DeleteThread(r.Context(), convID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// SendMessage appends a message entry to a thread.
func (h *ConversationsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	convID := mux.Vars(r)["id"]

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	msg, err := ws.Threads.SendMessage(convID, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": msg,
	})
}

// LinkJob links or unlinks a thread to a job.
func (h *ConversationsHandler) LinkJob(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	convID := mux.Vars(r)["id"]

	var req struct {
		JobID  string `json:"jobId"`
		Unlink bool   `json:"unlink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		http.Error(w, "jobId is required", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if req.Unlink {
		err = ws.Threads.UnlinkFromJob(r.Context(), convID, req.JobID)
	} else {
		err = ws.Threads.LinkToJob(r.Context(), convID, req.JobID)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
