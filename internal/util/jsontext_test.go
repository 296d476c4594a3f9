package util

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Aqui está o JSON: {\"a\":1} espero que ajude", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{`[1,2]`, `[1,2]`},
		{"no json", "no json"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := string(StripFences([]byte(tt.in))); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
