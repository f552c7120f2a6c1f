package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultConfigFile = "debtx.toml"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Secret   string         `toml:"secret"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string        `toml:"provider"`
	Model       string        `toml:"model"`
	BaseURL     string        `toml:"base_url"`
	APIKey      string        `toml:"api_key"`
	Temperature float32       `toml:"temperature"`
	MaxTokens   int           `toml:"max_tokens"`
	Timeout     time.Duration `toml:"timeout"`
	MaxAttempts int           `toml:"max_attempts"`
	RPM         int           `toml:"rpm"`
}

// PipelineConfig controls chunking, fan-out and text handling.
type PipelineConfig struct {
	ChunkSize     int      `toml:"chunk_size"`
	ChunkOverlap  int      `toml:"chunk_overlap"`
	HeaderTokens  []string `toml:"header_tokens"`
	Concurrency   int      `toml:"concurrency"`
	ProtectText   bool     `toml:"protect_text"`
	PdftotextPath string   `toml:"pdftotext_path"`
	// MaxPages caps the pages read per document; 0 reads them all.
	MaxPages      int      `toml:"max_pages"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string        `toml:"http_addr"`
	GRPCAddr    string        `toml:"grpc_addr"`
	MaxUploadMB int           `toml:"max_upload_mb"`
	Workers     int           `toml:"workers"`
	QueueSize   int           `toml:"queue_size"`
	JobTimeout  time.Duration `toml:"job_timeout"`
	UploadDir   string        `toml:"upload_dir"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.0,
			MaxTokens:   4096,
			Timeout:     45 * time.Second,
			MaxAttempts: 3,
			RPM:         0,
		},
		Pipeline: PipelineConfig{
			ChunkSize:    4000,
			ChunkOverlap: 400,
			HeaderTokens: []string{"nome", "cliente"},
			Concurrency:  1,
			ProtectText:  true,
		},
		Server: ServerConfig{
			HTTPAddr:    ":8080",
			GRPCAddr:    ":9090",
			MaxUploadMB: 25,
			Workers:     2,
			QueueSize:   32,
			JobTimeout:  5 * time.Minute,
			UploadDir:   os.TempDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig layers defaults, an optional TOML file and the environment (.env included).
// The file is taken from DEBTX_CONFIG, or debtx.toml in the working directory when present.
func LoadConfig() (*Config, error) {
	// .env never overrides variables already set in the process
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := getEnv("DEBTX_CONFIG", defaultConfigFile)
	if err := cfg.loadFile(path, path != defaultConfigFile); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return NewAppError("CONFIG_ERROR", "failed to read config file "+path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	switch c.LLM.Provider {
	case ProviderAnthropic:
		c.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.APIKey)
	default:
		c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	}
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxAttempts = getEnvAsInt("LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts)
	c.LLM.RPM = getEnvAsInt("LLM_RPM", c.LLM.RPM)

	c.Pipeline.ChunkSize = getEnvAsInt("CHUNK_SIZE", c.Pipeline.ChunkSize)
	c.Pipeline.ChunkOverlap = getEnvAsInt("CHUNK_OVERLAP", c.Pipeline.ChunkOverlap)
	c.Pipeline.HeaderTokens = getEnvAsList("CHUNK_HEADER_TOKENS", c.Pipeline.HeaderTokens)
	c.Pipeline.Concurrency = getEnvAsInt("CHUNK_CONCURRENCY", c.Pipeline.Concurrency)
	c.Pipeline.ProtectText = getEnvAsBool("PROTECT_TEXT", c.Pipeline.ProtectText)
	c.Pipeline.PdftotextPath = getEnv("PDFTOTEXT_BIN", c.Pipeline.PdftotextPath)
	c.Pipeline.MaxPages = getEnvAsInt("PDF_MAX_PAGES", c.Pipeline.MaxPages)

	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.Workers = getEnvAsInt("WORKERS", c.Server.Workers)
	c.Server.QueueSize = getEnvAsInt("QUEUE_SIZE", c.Server.QueueSize)
	c.Server.JobTimeout = getEnvAsDuration("JOB_TIMEOUT", c.Server.JobTimeout)
	c.Server.UploadDir = getEnv("UPLOAD_DIR", c.Server.UploadDir)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Secret = getEnv("APP_SECRET_KEY", c.Secret)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or anthropic", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "an API key is required for provider "+c.LLM.Provider, ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "LLM_MODEL is required", ErrInvalidInput)
	}
	if c.Pipeline.ChunkSize <= 0 {
		return NewAppError("CONFIG_ERROR", "CHUNK_SIZE must be positive", ErrInvalidInput)
	}
	if c.Pipeline.ChunkOverlap < 0 || c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return NewAppError("CONFIG_ERROR", "CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalidInput)
	}
	if c.Pipeline.Concurrency < 1 {
		return NewAppError("CONFIG_ERROR", "CHUNK_CONCURRENCY must be at least 1", ErrInvalidInput)
	}
	if c.Pipeline.MaxPages < 0 {
		return NewAppError("CONFIG_ERROR", "PDF_MAX_PAGES must not be negative", ErrInvalidInput)
	}
	if c.Pipeline.ProtectText && c.Secret == "" {
		return NewAppError("CONFIG_ERROR", "APP_SECRET_KEY is required when PROTECT_TEXT is on", ErrInvalidInput)
	}
	return nil
}
