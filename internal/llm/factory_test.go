package llm

import (
	"strings"
	"testing"

	"github.com/ppiankov/telcoscope/internal/model"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"disabled", Config{}, "", false},
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"anthropic", Config{Provider: "Anthropic", APIKey: "k"}, "anthropic", false},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{"ollama", Config{Provider: "ollama", Model: "llama3.1"}, "ollama", false},
		{"file", Config{Provider: "file", ReplayFile: "testdata/x.json"}, "file", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "gemini"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantName == "" {
				if backend != nil {
					t.Errorf("Expected nil backend, got %T", backend)
				}
				return
			}
			if backend.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", backend.Name(), tt.wantName)
			}
		})
	}
}

func TestNewBackend_UnknownListsProviders(t *testing.T) {
	_, err := NewBackend(Config{Provider: "gemini"})
	if err == nil || !strings.Contains(err.Error(), "anthropic, file, ollama, openai") {
		t.Errorf("Expected supported providers in error, got %v", err)
	}
	if got := strings.Join(Providers(), ","); got != "anthropic,file,ollama,openai" {
		t.Errorf("Providers() = %s", got)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "secret"
	cfg.HTTP.HTTPSProxy = "http://proxy:3128"

	c := ConfigFromModel(cfg.LLM, cfg.HTTP)
	if c.Provider != "anthropic" || c.APIKey != "secret" || c.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("Unexpected config: %+v", c)
	}
	if c.Temperature != cfg.LLM.Temperature || c.MaxTokens != cfg.LLM.MaxTokens {
		t.Errorf("Expected generation settings to carry over: %+v", c)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  Brisanet ")

	for _, want := range []string{`"Brisanet"`, "Brisanet Reclame Aqui nota", "reputation_signals", "SUPORTE_TECNICO", "has_active_outage", `"citations"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
