package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Sources      SourcesConfig      `yaml:"sources" mapstructure:"sources"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
}

// SourcesConfig holds the static domain lists used to classify citations
type SourcesConfig struct {
	// RegulatoryDomains are high-trust regulators and consumer-complaint registries (TERCEIROS/ALTA)
	RegulatoryDomains []string `yaml:"regulatory_domains" mapstructure:"regulatory_domains"`

	// NewsDomains are known news and tech-press outlets (NOTICIA/MEDIA)
	NewsDomains []string `yaml:"news_domains" mapstructure:"news_domains"`

	// ProfessionalNetworks match company pages that count as official (OFICIAL/ALTA)
	ProfessionalNetworks []PagePattern `yaml:"professional_networks" mapstructure:"professional_networks"`
}

// PagePattern matches a host (or any subdomain of it) and a path prefix
type PagePattern struct {
	Host       string `yaml:"host" mapstructure:"host"`
	PathPrefix string `yaml:"path_prefix" mapstructure:"path_prefix"`
}

// ScoringConfig holds the time windows used by the scorers
type ScoringConfig struct {
	RecencyWindow     time.Duration `yaml:"recency_window" mapstructure:"recency_window"`
	IncidentWindow    time.Duration `yaml:"incident_window" mapstructure:"incident_window"`
	MajorOutageWindow time.Duration `yaml:"major_outage_window" mapstructure:"major_outage_window"`
	MaxIncidents      int           `yaml:"max_incidents" mapstructure:"max_incidents"`
}

// LLMConfig configures the generative backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, file
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	ReplayFile  string  `yaml:"replay_file,omitempty" mapstructure:"replay_file"` // used by the file provider

	// Retries is the number of extra attempts after a retryable backend failure; the wait doubles each time
	Retries      int           `yaml:"retries" mapstructure:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// HTTPConfig configures outbound HTTP clients
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the backend response cache
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend       string        `yaml:"backend" mapstructure:"backend"` // layered, memory, disk, redis
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL     time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL       time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr     string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits calls to the generative backend
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	// Providers overrides requests_per_second per provider; 0 means unlimited
	Providers map[string]float64 `yaml:"providers,omitempty" mapstructure:"providers"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json, console
	Output string `yaml:"output" mapstructure:"output"` // stderr, stdout or a file path
}

// ServerConfig configures the HTTP transport
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Sources: DefaultSourcesConfig(),
		Scoring: ScoringConfig{
			RecencyWindow:     30 * 24 * time.Hour,
			IncidentWindow:    30 * 24 * time.Hour,
			MajorOutageWindow: 48 * time.Hour,
			MaxIncidents:      3,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "", // each backend picks its own default
			Timeout:     60,
			MaxTokens:   4000,
			Temperature: 0.1,

			Retries:      2,
			RetryBackoff: 2 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout: 90 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "layered",
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
			Providers: map[string]float64{
				"ollama": 0,
				"file":   0,
			},
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 2 * time.Minute,
		},
	}
}

// DefaultSourcesConfig returns the built-in Brazilian regulatory and press domain lists
func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		RegulatoryDomains: []string{
			"gov.br",
			"anatel.gov.br",
			"consumidor.gov.br",
			"reclameaqui.com.br",
		},
		NewsDomains: []string{
			"g1.globo.com",
			"tecmundo.com.br",
			"olhardigital.com.br",
			"infomoney.com.br",
			"estadao.com.br",
			"folha.uol.com.br",
			"minhaoperadora.com.br",
			"tecnoblog.net",
			"teletime.com.br",
			"telesintese.com.br",
		},
		ProfessionalNetworks: []PagePattern{
			{Host: "linkedin.com", PathPrefix: "/company/"},
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".telcoscope-cache"
	}
	return filepath.Join(dir, "telcoscope")
}
