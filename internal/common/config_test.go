package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEBTX_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 4000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 400, cfg.Pipeline.ChunkOverlap)
	assert.Equal(t, []string{"nome", "cliente"}, cfg.Pipeline.HeaderTokens)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Zero(t, cfg.Pipeline.MaxPages)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
secret = "from-file"

[llm]
provider = "anthropic"
model = "claude-test"
api_key = "file-key"
timeout = "10s"

[pipeline]
chunk_size = 2000
chunk_overlap = 100
header_tokens = ["devedor"]
concurrency = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DEBTX_CONFIG", path)
	t.Setenv("CHUNK_CONCURRENCY", "2")
	t.Setenv("PDF_MAX_PAGES", "50")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-test", cfg.LLM.Model)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, []string{"devedor"}, cfg.Pipeline.HeaderTokens)
	assert.Equal(t, 2, cfg.Pipeline.Concurrency, "env wins over file")
	assert.Equal(t, 50, cfg.Pipeline.MaxPages)
	assert.Equal(t, "from-file", cfg.Secret)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Setenv("DEBTX_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "key"
		cfg.Secret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "gemini" }, wantErr: true},
		{name: "missing key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: true},
		{name: "overlap too large", mutate: func(c *Config) { c.Pipeline.ChunkOverlap = c.Pipeline.ChunkSize }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Pipeline.Concurrency = 0 }, wantErr: true},
		{name: "negative page cap", mutate: func(c *Config) { c.Pipeline.MaxPages = -1 }, wantErr: true},
		{name: "protect without secret", mutate: func(c *Config) { c.Secret = "" }, wantErr: true},
		{name: "plain text without secret", mutate: func(c *Config) {
			c.Secret = ""
			c.Pipeline.ProtectText = false
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " nome , cliente,, ")
	assert.Equal(t, []string{"nome", "cliente"}, getEnvAsList("TEST_LIST", nil))

	t.Setenv("TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsList("TEST_LIST", []string{"x"}))
}
