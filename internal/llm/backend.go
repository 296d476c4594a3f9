package llm

import (
	"context"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
)

// Backend is a generative search service that answers an operator lookup with
// candidate profile text and the web citations that ground it
type Backend interface {
	// Name returns the provider name
	Name() string

	// Lookup asks the backend for a candidate profile of the operator named by query
	Lookup(ctx context.Context, query string) (*Response, error)

	// IsAvailable checks if the backend is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Response is the raw backend answer; Text is handed to the assembler untouched
type Response struct {
	// Text is the candidate profile, usually JSON, possibly wrapped in Markdown fences
	Text string `json:"text"`

	// Citations are the grounding references in the order the backend returned them
	Citations []model.Citation `json:"citations"`

	// Model is the model that generated the response
	Model string `json:"model,omitempty"`

	// TokensUsed tracks token consumption
	TokensUsed int `json:"tokens_used,omitempty"`
}

// Config holds backend configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "file", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	Temperature float32

	// ReplayFile is read by the file provider
	ReplayFile string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60,
		MaxTokens:   4000,
		Temperature: 0.1,
	}
}

// ConfigFromModel converts the application config to a backend config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:    llmConfig.Provider,
		Model:       llmConfig.Model,
		APIKey:      llmConfig.APIKey,
		BaseURL:     llmConfig.BaseURL,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		ReplayFile:  llmConfig.ReplayFile,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 4000
	}
	return c.MaxTokens
}
