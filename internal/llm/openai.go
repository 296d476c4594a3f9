package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/util"
)

// OpenAIBackend implements Backend with OpenAI's Chat Completions API.
// Any OpenAI-compatible endpoint works through BaseURL.
type OpenAIBackend struct {
	client *openai.Client
	config Config
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(config Config) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = util.NewHTTPClient(config.timeout(), config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIBackend) Name() string {
	return "openai"
}

// Model returns the configured model name
func (p *OpenAIBackend) Model() string {
	return p.config.Model
}

// IsAvailable checks if the backend is properly configured
func (p *OpenAIBackend) IsAvailable(ctx context.Context) bool {
	// Listing models is the lightest authenticated call
	_, err := p.client.ListModels(ctx)
	if err != nil {
		logging.L().Warn("OpenAI API check failed", zap.Error(err))
		return false
	}
	return true
}

// Lookup asks the model for a candidate profile in JSON mode.
// Chat completions carry no grounding metadata, so citations come from the answer's "citations" array.
func (p *OpenAIBackend) Lookup(ctx context.Context, query string) (*Response, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(query),
			},
		},
		MaxTokens:   p.config.maxTokens(),
		Temperature: p.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai lookup: %w", statusError(err))
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("OpenAI answer truncated at %d tokens; raise llm.max_tokens", p.config.maxTokens())
	}

	text, citations := SplitCitations(strings.TrimSpace(resp.Choices[0].Message.Content))
	if text == "" {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	return &Response{
		Text:       text,
		Citations:  citations,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// statusError maps go-openai's HTTP failures onto StatusError so they can be classified for retry
func statusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: "openai", Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: "openai", Code: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
