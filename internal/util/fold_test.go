package util

import (
	"testing"
	"time"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Média", "media"},
		{"  ÓTIMO ", "otimo"},
		{"Estável", "estavel"},
		{"reclamação", "reclamacao"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnumKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Suporte Técnico", "suporte_tecnico"},
		{"SUPORTE_TECNICO", "suporte_tecnico"},
		{"Consumidor.gov", "consumidorgov"},
		{"whats-app", "whats_app"},
	}

	for _, tt := range tests {
		if got := EnumKey(tt.in); got != tt.want {
			t.Errorf("EnumKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	for _, s := range []string{"2026-10-17", "2026-10-17T00:00:00Z", "2026-10-16T21:00:00-03:00", "17/10/2026", " 2026-10-17 00:00:00 "} {
		got, ok := ParseTimestamp(s)
		if !ok {
			t.Errorf("ParseTimestamp(%q) failed", s)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}

	for _, s := range []string{"", "ontem", "2026-13-40"} {
		if _, ok := ParseTimestamp(s); ok {
			t.Errorf("Expected ParseTimestamp(%q) to fail", s)
		}
	}
}
