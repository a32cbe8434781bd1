package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chronicle-ai/chronicle/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
max_upload_size = "50MB"

[database]
host = "localhost"
port = 5432
name = "chronicle"
user = "chronicle"
password = "chronicle"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "documents"
connection_string = "DefaultEndpointsProtocol=http;AccountName=chroniclestore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/chroniclestore;"

[notify]
addr = "localhost:6379"
topic_prefix = "chronicle:"

[adapter]
base_url = "http://localhost:11434/v1"
model = "llama3.2"
timeout = "60s"

[pipeline]
batch_concurrency = 4
retrieval_limit = 8
chunk_size = 1000
memory_cap = 30

[pagination]
default_page_size = 25
max_page_size = 50

[unit]
temperature = 0.3
max_tokens = 2048

[unit.rate_limit]
max_calls = 20
window = "1m"

[unit.breaker]
failure_threshold = 4

[units.summarizer]
temperature = 0.1

[units.summarizer.pricing]
prompt_per_1k = 0.003
completion_per_1k = 0.015
`

const overlayConfig = `
[database]
host = "prodhost"

[adapter]
model = "gpt-4o-mini"
`

// minimalConfig provides the minimum fields required for validation
// to pass (db name, db user, storage connection string).
const minimalConfig = `
[database]
name = "chronicle"
user = "chronicle"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.Adapter.Model != "llama3.2" {
		t.Errorf("adapter model: got %s, want llama3.2", cfg.Adapter.Model)
	}
	if cfg.Pipeline.BatchConcurrency != 4 {
		t.Errorf("batch_concurrency: got %d, want 4", cfg.Pipeline.BatchConcurrency)
	}
	if cfg.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.Pagination.DefaultPageSize)
	}
	if cfg.Notify.TopicPrefix != "chronicle:" {
		t.Errorf("notify topic_prefix: got %s, want chronicle:", cfg.Notify.TopicPrefix)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("CHRONICLE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Adapter.Model != "gpt-4o-mini" {
		t.Errorf("adapter model: got %s, want gpt-4o-mini (from overlay)", cfg.Adapter.Model)
	}
	if cfg.Adapter.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("adapter base_url: got %s, want base value", cfg.Adapter.BaseURL)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("CHRONICLE_VERSION", "2.0.0")
	t.Setenv("CHRONICLE_ADAPTER_MODEL", "gpt-4o")
	t.Setenv("CHRONICLE_PIPELINE_BATCH_CONCURRENCY", "7")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Adapter.Model != "gpt-4o" {
		t.Errorf("adapter model: got %s, want gpt-4o", cfg.Adapter.Model)
	}
	if cfg.Pipeline.BatchConcurrency != 7 {
		t.Errorf("batch_concurrency: got %d, want 7", cfg.Pipeline.BatchConcurrency)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("CHRONICLE_DB_NAME", "testdb")
	t.Setenv("CHRONICLE_DB_USER", "testuser")
	t.Setenv("CHRONICLE_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
	if cfg.Pipeline.RetrievalLimit != 5 {
		t.Errorf("retrieval_limit default: got %d, want 5", cfg.Pipeline.RetrievalLimit)
	}
	if cfg.Pipeline.MemoryCap != 20 {
		t.Errorf("memory_cap default: got %d, want 20", cfg.Pipeline.MemoryCap)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `invalid = `)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("CHRONICLE_ENV", "production")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestPaginationDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.Pagination.DefaultPageSize)
	}
	if cfg.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{MaxUploadSize: tt.size}
			got := cfg.MaxUploadSizeBytes()
			if got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "invalid shutdown_timeout",
			config: `
shutdown_timeout = "bad"

[database]
name = "chronicle"
user = "chronicle"

[storage]
connection_string = "conn"
`,
			wantErr: "invalid shutdown_timeout",
		},
		{
			name: "invalid adapter timeout",
			config: `
[database]
name = "chronicle"
user = "chronicle"

[storage]
connection_string = "conn"

[adapter]
timeout = "bad"
`,
			wantErr: "adapter",
		},
		{
			name: "invalid batch concurrency",
			config: `
[database]
name = "chronicle"
user = "chronicle"

[storage]
connection_string = "conn"

[pipeline]
batch_concurrency = -1
`,
			wantErr: "batch_concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestUnitConfigFor(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	shared, err := cfg.UnitConfigFor("entity-extractor")
	if err != nil {
		t.Fatalf("unit config failed: %v", err)
	}
	if shared.Temperature != 0.3 {
		t.Errorf("shared temperature: got %v, want 0.3", shared.Temperature)
	}
	if shared.RateLimit.MaxCalls != 20 {
		t.Errorf("shared rate limit: got %d, want 20", shared.RateLimit.MaxCalls)
	}
	if shared.Breaker.FailureThreshold != 4 {
		t.Errorf("shared failure threshold: got %d, want 4", shared.Breaker.FailureThreshold)
	}

	summarizer, err := cfg.UnitConfigFor("summarizer")
	if err != nil {
		t.Fatalf("unit config failed: %v", err)
	}
	if summarizer.Temperature != 0.1 {
		t.Errorf("override temperature: got %v, want 0.1", summarizer.Temperature)
	}
	if summarizer.RateLimit.MaxCalls != 20 {
		t.Errorf("inherited rate limit: got %d, want 20", summarizer.RateLimit.MaxCalls)
	}
	if summarizer.Pricing.PromptPer1K != 0.003 {
		t.Errorf("override pricing: got %v, want 0.003", summarizer.Pricing.PromptPer1K)
	}
}

func TestUnitConfigForUnknownUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	uc, err := cfg.UnitConfigFor("deep-analyzer")
	if err != nil {
		t.Fatalf("unit config failed: %v", err)
	}
	if uc.Retry.MaxAttempts != 3 {
		t.Errorf("retry max_attempts default: got %d, want 3", uc.Retry.MaxAttempts)
	}
	if uc.Retry.BaseDelay != "200ms" {
		t.Errorf("retry base_delay default: got %s, want 200ms", uc.Retry.BaseDelay)
	}
	if uc.Temperature != 0.2 {
		t.Errorf("temperature default: got %v, want 0.2", uc.Temperature)
	}
}
