package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaBackend_Lookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Format != "json" || req.Stream {
			t.Errorf("Expected non-streaming JSON request, got %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || !strings.Contains(req.Messages[1].Content, "Vivo") {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           "llama3.1",
			Message:         ollamaMessage{Role: "assistant", Content: candidateWithCitations},
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Lookup(context.Background(), "Vivo")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(resp.Citations) != 2 {
		t.Errorf("Expected 2 citations, got %v", resp.Citations)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOllamaBackend_Lookup_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Model: "llama3.1", Message: ollamaMessage{Role: "assistant", Content: `{"name": "Vivo"}`}, Done: true})
	}))
	defer server.Close()

	backend, _ := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})

	resp, err := backend.Lookup(context.Background(), "Vivo")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if resp.TokensUsed == 0 {
		t.Error("Expected an estimated token count")
	}
}

func TestOllamaBackend_Lookup_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Internal Server Error"}`))
	}))
	defer server.Close()

	backend, _ := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})

	_, err := backend.Lookup(context.Background(), "Vivo")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Errorf("Expected error message to contain 'Internal Server Error', got %v", err)
	}
}

func TestOllamaBackend_Lookup_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	backend, _ := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})

	if _, err := backend.Lookup(context.Background(), "Vivo"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaBackend_Lookup_NoModel(t *testing.T) {
	backend, _ := NewOllamaBackend(Config{BaseURL: "http://localhost:11434"})

	_, err := backend.Lookup(context.Background(), "Vivo")
	if err == nil || !strings.Contains(err.Error(), "must be specified") {
		t.Errorf("Expected error about missing model, got %v", err)
	}
}

func TestOllamaBackend_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"},{"name":"mistral:7b"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend, _ := NewOllamaBackend(Config{BaseURL: server.URL})
	if !backend.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	for model, want := range map[string]bool{"llama3.1": true, "mistral:7b": true, "qwen2": false} {
		b, _ := NewOllamaBackend(Config{BaseURL: server.URL, Model: model})
		if got := b.IsAvailable(context.Background()); got != want {
			t.Errorf("IsAvailable with model %s = %v, want %v", model, got, want)
		}
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if backend.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
