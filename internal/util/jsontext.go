package util

import "bytes"

// StripFences removes Markdown code fences and any prose around the outermost JSON object
func StripFences(raw []byte) []byte {
	body := bytes.TrimSpace(raw)
	body = bytes.ReplaceAll(body, []byte("```json"), nil)
	body = bytes.ReplaceAll(body, []byte("```"), nil)
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] != '[' {
		start := bytes.IndexByte(body, '{')
		end := bytes.LastIndexByte(body, '}')
		if start >= 0 && end > start {
			body = body[start : end+1]
		}
	}
	return body
}
