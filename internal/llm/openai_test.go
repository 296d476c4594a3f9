package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

const candidateWithCitations = `{"name": "Vivo", "outage_status": {"has_active_outage": false}, "citations": [{"url": "https://www.vivo.com.br", "title": "Vivo"}, "https://www.reclameaqui.com.br/empresa/vivo/"]}`

func TestOpenAIBackend_Lookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Error("Expected JSON response format")
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, `"Vivo"`) {
			t.Errorf("Expected the query in the user prompt, got %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "```json\n" + candidateWithCitations + "\n```",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{
				TotalTokens: 100,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Lookup(context.Background(), "Vivo")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if !strings.HasPrefix(resp.Text, "{") {
		t.Errorf("Expected fences to be stripped, got %q", resp.Text)
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %v", resp.Citations)
	}
	if resp.Citations[0].Title != "Vivo" || resp.Citations[1].URL != "https://www.reclameaqui.com.br/empresa/vivo/" {
		t.Errorf("Unexpected citations: %v", resp.Citations)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOpenAIBackend_Lookup_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Config{APIKey: "bad-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	_, err = backend.Lookup(context.Background(), "Claro")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("Expected API message in error, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Errorf("Expected StatusError 401, got %v", err)
	}
	if Retryable(err) {
		t.Error("Expected an auth failure not to be retried")
	}
}

func TestOpenAIBackend_Lookup_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{Model: "gpt-4o-mini"})
	}))
	defer server.Close()

	backend, _ := NewOpenAIBackend(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	if _, err := backend.Lookup(context.Background(), "TIM"); err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestNewOpenAIBackend_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIBackend(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestOpenAIBackend_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_ = json.NewEncoder(w).Encode(openai.ModelsList{})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend, _ := NewOpenAIBackend(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if !backend.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if backend.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
