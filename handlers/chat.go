package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/services"
)

// ChatHandler serves the floating chat panel.
type ChatHandler struct {
	chatService *services.ChatService
	registry    *services.Registry
}

func NewChatHandler(chatService *services.ChatService, registry *services.Registry) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		registry:    registry,
	}
}

// SendMessage resolves one chat message. The structured payload in the
// response is advisory; the board is not mutated here.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// Live bucket counts feed the interpreter's query summary when the
	// chat runs locally.
	var counts map[database.Status]int
	if ws, err := h.registry.Workspace(r.Context(), user.ID); err == nil {
		counts = ws.Board.StatusCounts()
	}

	resp := h.chatService.SendMessage(r.Context(), req.Message, user.ID, counts)
	respondJSON(w, http.StatusOK, resp)
}
