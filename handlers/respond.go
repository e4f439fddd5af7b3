package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jobdeck/jobdeck/database"
	"github.com/jobdeck/jobdeck/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation
// errors carry their message through; everything else gets a generic
// string so backend details stay out of responses.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusBadRequest)
	case errors.Is(err, database.ErrUnauthenticated):
		http.Error(w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		log.Printf("Server error: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
