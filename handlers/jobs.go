package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/services"
)

// JobsHandler serves the board: job CRUD and drag-and-drop status moves.
type JobsHandler struct {
	registry *services.Registry
}

func NewJobsHandler(registry *services.Registry) *JobsHandler {
	return &JobsHandler{registry: registry}
}

// ListJobs returns the full job list plus the derived column partition.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
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
		"status":  "success",
		"jobs":    ws.Board.Jobs(),
		"columns": ws.Board.Columns(),
	})
}

// CreateJob adds a job from the submitted form.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	var params database.JobParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	job, err := ws.Board.AddJob(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"job":    job,
	})
}

type jobPatchRequest struct {
	Status *database.Status    `json:"status"`
	Fields *database.JobUpdate `json:"fields"`
}

// PatchJob moves a job to another column and/or applies detail-view edits.
func (h *JobsHandler) PatchJob(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	jobID := mux.Vars(r)["id"]

	var req jobPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if req.Status != nil {
		if err := ws.Board.MoveJob(r.Context(), jobID, *req.Status); err != nil {
			respondError(w, err)
			return
		}
	}
	if req.Fields != nil {
		if err := ws.Board.UpdateJob(r.Context(), jobID, *req.Fields); err != nil {
			respondError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"columns": ws.Board.Columns(),
	})
}

// DeleteJob removes a job. Links from conversations are left untouched.
func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	jobID := mux.Vars(r)["id"]

	ws, err := h.registry.Workspace(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := ws.Board.DeleteJob(r.Context(), jobID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
