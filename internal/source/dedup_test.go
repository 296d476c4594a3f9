package source

import (
	"testing"

	"github.com/ppiankov/telcoscope/internal/model"
)

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	citations := []model.Citation{
		{URL: "https://a.example/1", Title: "one"},
		{URL: "https://b.example/2", Title: "two"},
		{URL: "https://a.example/1", Title: "one again"},
		{URL: "https://a.example/1", Title: "one more"},
		{URL: "https://a.example/1/", Title: "trailing slash is a different URL"},
	}

	got := Dedupe(citations)

	if len(got) != 3 {
		t.Fatalf("Expected 3 unique citations, got %d", len(got))
	}
	if got[0].Title != "one" {
		t.Errorf("Expected first occurrence to win, got %q", got[0].Title)
	}
	if got[1].URL != "https://b.example/2" || got[2].URL != "https://a.example/1/" {
		t.Errorf("Expected input order to be preserved, got %v", got)
	}
}

func TestDedupe_DropsBlankURLs(t *testing.T) {
	got := Dedupe([]model.Citation{{URL: ""}, {URL: "   "}, {URL: "https://x.example"}})
	if len(got) != 1 {
		t.Errorf("Expected blank URLs to be dropped, got %v", got)
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://g1.globo.com/tecnologia", "globo.com"},
		{"https://www.anatel.gov.br/x", "anatel.gov.br"},
		{"https://www.vivo.com.br/", "vivo.com.br"},
		{"://broken", ""},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.url); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
