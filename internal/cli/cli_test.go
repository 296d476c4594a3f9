package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/pipeline"
	"github.com/ppiankov/telcoscope/internal/worker"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults failed: %v", err)
	}
	v.SetEnvPrefix("TELCOSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := decodeConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	def := model.DefaultConfig()
	if cfg.Scoring.RecencyWindow != def.Scoring.RecencyWindow {
		t.Errorf("expected recency window %v, got %v", def.Scoring.RecencyWindow, cfg.Scoring.RecencyWindow)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if len(cfg.Sources.RegulatoryDomains) != len(def.Sources.RegulatoryDomains) {
		t.Errorf("expected %d regulatory domains, got %d", len(def.Sources.RegulatoryDomains), len(cfg.Sources.RegulatoryDomains))
	}
	if len(cfg.Sources.ProfessionalNetworks) != 1 || cfg.Sources.ProfessionalNetworks[0].PathPrefix != "/company/" {
		t.Errorf("unexpected professional networks: %+v", cfg.Sources.ProfessionalNetworks)
	}
}

func TestDecodeConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TELCOSCOPE_LLM_PROVIDER", "ollama")
	t.Setenv("TELCOSCOPE_LLM_BASE_URL", "http://gpu-box:11434")
	t.Setenv("TELCOSCOPE_SERVER_REQUEST_TIMEOUT", "30s")
	t.Setenv("TELCOSCOPE_CONCURRENCY_WORKERS", "9")

	cfg, err := decodeConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL != "http://gpu-box:11434" {
		t.Errorf("expected base url from env, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Concurrency.Workers != 9 {
		t.Errorf("expected 9 workers, got %d", cfg.Concurrency.Workers)
	}
}

func TestDecodeConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: anthropic
cache:
  enabled: false
scoring:
  max_incidents: 5
rate_limiting:
  providers:
    openai: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := newTestViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.Cache.Enabled || cfg.Scoring.MaxIncidents != 5 {
		t.Errorf("config file values not applied: %+v %+v %+v", cfg.LLM, cfg.Cache, cfg.Scoring)
	}
	if got := cfg.RateLimiting.Providers["openai"]; got != 0.5 {
		t.Errorf("expected openai override 0.5, got %v", got)
	}
	if _, ok := cfg.RateLimiting.Providers["ollama"]; !ok {
		t.Error("expected default ollama override to survive")
	}
	// Untouched keys keep their defaults
	if cfg.Scoring.MajorOutageWindow != 48*time.Hour {
		t.Errorf("expected default outage window, got %v", cfg.Scoring.MajorOutageWindow)
	}
}

func TestApplyEnvSecrets(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "claude"
	applyEnvSecrets(cfg)
	if cfg.LLM.APIKey != "sk-ant-test" {
		t.Errorf("expected key from ANTHROPIC_API_KEY, got %q", cfg.LLM.APIKey)
	}

	cfg.LLM.APIKey = "configured"
	applyEnvSecrets(cfg)
	if cfg.LLM.APIKey != "configured" {
		t.Errorf("expected configured key to win, got %q", cfg.LLM.APIKey)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vivo", "vivo"},
		{"Claro S/A", "claro-s_a"},
		{"  ../etc  ", "etc"},
		{"Telefônica Brasil", "telefônica-brasil"},
		{"", "operator"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]int)
	if got := uniqueSlug(used, "vivo"); got != "vivo" {
		t.Errorf("expected vivo, got %q", got)
	}
	if got := uniqueSlug(used, "vivo"); got != "vivo-2" {
		t.Errorf("expected vivo-2, got %q", got)
	}
}

func TestReadCitations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"objects", `[{"url":"https://a.com","title":"A"},{"url":"https://b.com"}]`, 2, false},
		{"strings", `["https://a.com", "https://b.com", ""]`, 2, false},
		{"wrapped", `{"citations":[{"url":"https://a.com"}]}`, 1, false},
		{"garbage", `not json`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "citations.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := readCitations(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readCitations error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d citations, got %d", tt.want, len(got))
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# telcoscope configuration") {
		t.Error("expected header comment")
	}
	if !strings.Contains(string(data), "regulatory_domains:") {
		t.Error("expected sources section in config")
	}

	v := newTestViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestRedactedYAML(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"

	data, err := redactedYAML(cfg)
	if err != nil {
		t.Fatalf("redactedYAML failed: %v", err)
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Error("api key leaked into config show output")
	}
	if cfg.LLM.APIKey != "sk-secret" {
		t.Error("redaction must not modify the caller's config")
	}
}

func TestAssembleCommand_Reproducible(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "candidate.json")
	out := filepath.Join(dir, "profile.json")

	content := `{
  "name": "Operadora Teste",
  "website": "https://www.teste.com.br",
  "contacts": [{"type": "SAC", "value": "0800 000 0000"}],
  "coverage": ["SP"],
  "outage_status": {"has_active_outage": false},
  "citations": ["https://www.teste.com.br/contato", "https://www.anatel.gov.br/teste"]
}`
	if err := os.WriteFile(candidate, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func() []byte {
		rootCmd.SetArgs([]string{"assemble", candidate,
			"--now", "2026-10-18T12:00:00Z",
			"--id", "fixed-id",
			"--json", out,
			"--config", filepath.Join(dir, "missing.yaml"),
		})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("assemble failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Error("expected byte-identical output with fixed clock and id")
	}

	var profile model.OperatorProfile
	if err := json.Unmarshal(first, &profile); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if profile.ID != "fixed-id" || len(profile.Sources) != 2 {
		t.Errorf("unexpected profile: id=%q sources=%d", profile.ID, len(profile.Sources))
	}
}

func TestBatchWriter_Handle(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	w := newBatchWriter(dir, false, &out)

	ok := func(name string) *worker.LookupResult {
		return &worker.LookupResult{
			Query: name,
			Result: &pipeline.LookupResult{
				Query:    name,
				Assembly: &pipeline.Assembly{Profile: &model.OperatorProfile{Name: name}},
			},
		}
	}

	w.handle(1, 3, ok("Vivo"))
	w.handle(2, 3, ok("Vivo"))
	w.handle(3, 3, &worker.LookupResult{Query: "Nada", Error: errors.New("backend down")})

	if w.written != 2 || w.failed != 1 {
		t.Fatalf("expected 2 written and 1 failed, got %d/%d", w.written, w.failed)
	}
	for _, name := range []string{"vivo.json", "vivo.md", "vivo-2.json", "vivo-2.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "[3/3] ✗ Nada: backend down") {
		t.Errorf("missing failure line in output:\n%s", out.String())
	}
}

func TestReloadLogLevel(t *testing.T) {
	defer logging.Set(nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := newTestViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	if _, err := logging.Init(model.LoggingConfig{Level: "warn", Output: filepath.Join(dir, "out.log")}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	reloadLogLevel(v, fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	if logging.L().Core().Enabled(zap.DebugLevel) {
		t.Fatal("Expected chmod events to be ignored")
	}

	reloadLogLevel(v, fsnotify.Event{Name: path, Op: fsnotify.Write})
	if !logging.L().Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug to be enabled after reload")
	}
}
