package llm

import (
	"fmt"
	"sort"
	"strings"
)

type constructor func(Config) (Backend, error)

var backends = map[string]constructor{
	"openai":    wrap(NewOpenAIBackend),
	"anthropic": wrap(NewAnthropicBackend),
	"ollama":    wrap(NewOllamaBackend),
	"file":      wrap(NewFileBackend),
}

// wrap adapts a concrete constructor, keeping a failed build a nil interface
func wrap[B Backend](fn func(Config) (B, error)) constructor {
	return func(c Config) (Backend, error) {
		b, err := fn(c)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

var aliases = map[string]string{
	"claude": "anthropic",
	"replay": "file",
}

// Providers lists the provider names NewBackend accepts, aliases excluded
func Providers() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates the backend named by config.Provider.
// An empty provider returns (nil, nil): lookups are disabled.
func NewBackend(config Config) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(config.Provider))
	if name == "" {
		return nil, nil
	}
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}

	build, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (supported: %s)", config.Provider, strings.Join(Providers(), ", "))
	}
	return build(config)
}
