package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageWithoutWebhookUsesInterpreter(t *testing.T) {
	svc := NewChatService("", NewInterpreter())

	resp := svc.SendMessage(context.Background(), "Add Google interview, $150k", "user-1", nil)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentCreateJob, resp.Data.Intent)
	assert.Equal(t, "Google", resp.Data.Entities.Company)
}

func TestSendMessageForwardsToWebhook(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(ChatResponse{
			Success: true,
			Message: "Added Google to your board!",
		})
	}))
	defer server.Close()

	svc := NewChatService(server.URL, NewInterpreter())
	resp := svc.SendMessage(context.Background(), "Add Google interview", "user-1", nil)

	assert.True(t, resp.Success)
	assert.Equal(t, "Added Google to your board!", resp.Message)
	assert.Equal(t, "Add Google interview", received["message"])
	assert.Equal(t, "user-1", received["userId"])
}

func TestSendMessageWebhookErrorsBecomeApology(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := NewChatService(server.URL, NewInterpreter())
			resp := svc.SendMessage(context.Background(), "hello", "user-1", nil)

			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, "Sorry")
			assert.Nil(t, resp.Data)
		})
	}
}

func TestSendMessageUnreachableWebhookBecomesApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection now refused

	svc := NewChatService(server.URL, NewInterpreter())
	resp := svc.SendMessage(context.Background(), "hello", "user-1", nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Sorry")
}
