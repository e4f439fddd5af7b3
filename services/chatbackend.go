package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jobdeck/jobdeck/database"
)

// ChatService answers chat messages. When a webhook URL is configured it
// forwards messages there; otherwise the local interpreter handles them.
type ChatService struct {
	webhookURL  string
	client      *http.Client
	interpreter *Interpreter
}

func NewChatService(webhookURL string, interpreter *Interpreter) *ChatService {
	return &ChatService{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		interpreter: interpreter,
	}
}

// SendMessage resolves one chat message. counts may carry the caller's
// live per-bucket totals for the local query summary. Webhook transport
// failures never propagate as errors; the user gets an apologetic reply
// instead.
func (s *ChatService) SendMessage(ctx context.Context, message, userID string, counts map[database.Status]int) ChatResponse {
	if s.webhookURL == "" {
		return s.interpreter.InterpretWithCounts(message, counts)
	}

	body, err := json.Marshal(map[string]string{
		"message": message,
		"userId":  userID,
	})
	if err != nil {
		log.Printf("Error marshalling chat request: %v", err)
		return chatFailure()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("Error building chat request: %v", err)
		return chatFailure()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Chat backend error: %v", err)
		return chatFailure()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Chat backend error: %v", fmt.Errorf("unexpected status %d", resp.StatusCode))
		return chatFailure()
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		log.Printf("Error decoding chat response: %v", err)
		return chatFailure()
	}
	return chatResp
}

func chatFailure() ChatResponse {
	return ChatResponse{
		Success: false,
		Message: "Sorry, I encountered an error processing your request. Please try again.",
	}
}
