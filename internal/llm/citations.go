package llm

import (
	"encoding/json"
	"strings"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

// SplitCitations strips Markdown fences from a model answer and lifts its top-level
// "citations" array. Entries may be objects ({"url","title"}) or bare URL strings;
// entries without a URL are skipped.
// The returned text is the fence-stripped answer with the citations key still in it.
func SplitCitations(text string) (string, []model.Citation) {
	body := util.StripFences([]byte(text))

	var envelope struct {
		Citations []json.RawMessage `json:"citations"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return string(body), nil
	}

	citations := make([]model.Citation, 0, len(envelope.Citations))
	for _, raw := range envelope.Citations {
		var c model.Citation
		if err := json.Unmarshal(raw, &c); err != nil {
			var u string
			if err := json.Unmarshal(raw, &u); err != nil {
				continue
			}
			c = model.Citation{URL: u}
		}
		c.URL = strings.TrimSpace(c.URL)
		if c.URL != "" {
			citations = append(citations, c)
		}
	}
	return string(body), citations
}

// mergeCitations concatenates citation lists, skipping blank URLs and exact URL repeats
func mergeCitations(lists ...[]model.Citation) []model.Citation {
	seen := make(map[string]bool)
	out := make([]model.Citation, 0)
	for _, list := range lists {
		for _, c := range list {
			if c.URL == "" || seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			out = append(out, c)
		}
	}
	return out
}
