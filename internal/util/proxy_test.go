package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example.com")

	tests := []struct {
		url  string
		want string
	}{
		{"http://api.example.com/v1", "http://proxy.local:3128"},
		{"https://api.example.com/v1", "http://secure-proxy.local:3128"},
		{"https://internal.example.com/v1", ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) error: %v", tt.url, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.url, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_HTTPSFallsBackToHTTPProxy(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "")

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	got, err := proxy(req)
	if err != nil || got == nil || got.Host != "proxy.local:3128" {
		t.Errorf("Expected https traffic through the http proxy, got %v (%v)", got, err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, "", "", "")
	if c.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", c.Timeout)
	}
	if _, ok := c.Transport.(*http.Transport); !ok {
		t.Errorf("Expected *http.Transport, got %T", c.Transport)
	}
}
