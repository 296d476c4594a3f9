package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/util"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaBackend talks to a local Ollama server through its chat endpoint.
// Local models cannot search the web, so citations only appear when the model writes them itself.
type OllamaBackend struct {
	baseURL string
	client  *http.Client
	config  Config
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`

	// only reported on the final message
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaBackend creates a backend for the server at config.BaseURL (default localhost:11434)
func NewOllamaBackend(config Config) (*OllamaBackend, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		base = defaultOllamaURL
	}
	return &OllamaBackend{
		baseURL: base,
		client:  util.NewHTTPClient(config.timeout(), config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config:  config,
	}, nil
}

// Name returns the provider name
func (o *OllamaBackend) Name() string { return "ollama" }

// Model returns the configured model name
func (o *OllamaBackend) Model() string { return o.config.Model }

// IsAvailable reports whether the server answers and, when a model is
// configured, whether that model has been pulled
func (o *OllamaBackend) IsAvailable(ctx context.Context) bool {
	log := logging.L().With(zap.String("provider", "ollama"), zap.String("base_url", o.baseURL))

	var tags ollamaTags
	if err := o.call(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		log.Warn("Ollama not reachable", zap.Error(err))
		return false
	}
	if o.config.Model == "" {
		return true
	}
	for _, m := range tags.Models {
		if m.Name == o.config.Model || strings.TrimSuffix(m.Name, ":latest") == o.config.Model {
			return true
		}
	}
	log.Warn("Ollama model not pulled", zap.String("model", o.config.Model))
	return false
}

// Lookup asks the local model for a candidate profile as JSON
func (o *OllamaBackend) Lookup(ctx context.Context, query string) (*Response, error) {
	if o.config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g. llama3.1:8b)")
	}

	prompt := BuildPrompt(query)
	req := ollamaChatRequest{
		Model: o.config.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		Format: "json",
		Options: map[string]any{
			"temperature": o.config.Temperature,
			"num_predict": o.config.maxTokens(),
		},
	}

	var resp ollamaChatResponse
	if err := o.call(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	text, citations := SplitCitations(strings.TrimSpace(resp.Message.Content))
	if text == "" {
		return nil, fmt.Errorf("ollama returned an empty message")
	}

	tokens := resp.PromptEvalCount + resp.EvalCount
	if tokens == 0 {
		// some models report no counts; ~4 characters per token
		tokens = (len(prompt) + len(text)) / 4
	}

	return &Response{
		Text:       text,
		Citations:  citations,
		Model:      resp.Model,
		TokensUsed: tokens,
	}, nil
}

// call sends payload (if any) as JSON and decodes a 200 reply into out
func (o *OllamaBackend) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Provider: "ollama", Code: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			se.Message = apiErr.Error
		}
		return se
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
