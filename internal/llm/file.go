package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileBackend replays a stored backend answer from disk.
// The file holds either a Response ({"text": ..., "citations": [...]}) or a bare candidate
// object, in which case its "citations" array, if any, is lifted out.
type FileBackend struct {
	path string
}

// NewFileBackend creates a replay backend
func NewFileBackend(config Config) (*FileBackend, error) {
	if config.ReplayFile == "" {
		return nil, fmt.Errorf("replay file is required for the file provider")
	}
	return &FileBackend{path: config.ReplayFile}, nil
}

// Name returns the provider name
func (p *FileBackend) Name() string {
	return "file"
}

// IsAvailable reports whether the replay file exists
func (p *FileBackend) IsAvailable(ctx context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// Lookup ignores the query and returns the stored answer
func (p *FileBackend) Lookup(ctx context.Context, query string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	return ParseReplay(data)
}

// ParseReplay decodes a stored answer in either supported shape
func ParseReplay(data []byte) (*Response, error) {
	var stored Response
	if err := json.Unmarshal(data, &stored); err == nil && stored.Text != "" {
		return &stored, nil
	}

	text, citations := SplitCitations(string(data))
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return nil, fmt.Errorf("replay file is empty")
	}
	return &Response{Text: text, Citations: citations, Model: "replay"}, nil
}
