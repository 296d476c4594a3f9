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
	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	webSearchTool         = "web_search_20250305"
	webSearchMaxUses      = 5
)

// AnthropicBackend implements Backend with Anthropic's Messages API and its server-side web search tool
type AnthropicBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Anthropic API structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type anthropicContent struct {
	Type      string              `json:"type"`
	Text      string              `json:"text,omitempty"`
	Citations []anthropicCitation `json:"citations,omitempty"`

	// Content is a result list for web_search_tool_result blocks, or an error object
	Content json.RawMessage `json:"content,omitempty"`
}

type anthropicCitation struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicBackend creates a new Anthropic backend
func NewAnthropicBackend(config Config) (*AnthropicBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	return &AnthropicBackend{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: util.NewHTTPClient(config.timeout(), config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicBackend) Name() string {
	return "anthropic"
}

// Model returns the configured model name
func (p *AnthropicBackend) Model() string {
	return p.config.Model
}

// IsAvailable makes a minimal completion call
func (p *AnthropicBackend) IsAvailable(ctx context.Context) bool {
	req := anthropicRequest{
		Model:     p.model(),
		MaxTokens: 10,
		Messages: []anthropicMessage{
			{Role: "user", Content: "Hi"},
		},
	}

	_, err := p.makeRequest(ctx, req)
	if err != nil {
		logging.L().Warn("Anthropic API check failed", zap.Error(err))
		return false
	}
	return true
}

// Lookup runs a web-search-grounded completion. Citations are collected from the
// search results and text citations first, then from the answer's own "citations" array.
func (p *AnthropicBackend) Lookup(ctx context.Context, query string) (*Response, error) {
	apiReq := anthropicRequest{
		Model:     p.model(),
		MaxTokens: p.config.maxTokens(),
		System:    SystemInstruction,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: BuildPrompt(query),
			},
		},
		Temperature: p.config.Temperature,
		Tools: []anthropicTool{
			{Type: webSearchTool, Name: "web_search", MaxUses: webSearchMaxUses},
		},
	}

	resp, err := p.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic lookup: %w", err)
	}

	var text strings.Builder
	var grounded []model.Citation
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
			for _, c := range block.Citations {
				grounded = append(grounded, model.Citation{URL: c.URL, Title: c.Title})
			}
		case "web_search_tool_result":
			grounded = append(grounded, searchResults(block.Content)...)
		}
	}

	body, answerCitations := SplitCitations(strings.TrimSpace(text.String()))
	if body == "" {
		return nil, fmt.Errorf("no content in Anthropic response")
	}

	return &Response{
		Text:       body,
		Citations:  mergeCitations(grounded, answerCitations),
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicBackend) model() string {
	if p.config.Model != "" {
		return p.config.Model
	}
	return defaultAnthropicModel
}

// searchResults decodes a web_search_tool_result payload; error payloads yield nothing
func searchResults(raw json.RawMessage) []model.Citation {
	var results []struct {
		Type  string `json:"type"`
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil
	}

	out := make([]model.Citation, 0, len(results))
	for _, r := range results {
		if r.Type == "web_search_result" && r.URL != "" {
			out = append(out, model.Citation{URL: r.URL, Title: r.Title})
		}
	}
	return out
}

// makeRequest makes an HTTP request to the Anthropic API
func (p *AnthropicBackend) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		se := &StatusError{Provider: "anthropic", Code: httpResp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			se.Message = apiErr.Error.Type + ": " + apiErr.Error.Message
		}
		return nil, se
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
