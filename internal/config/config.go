package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ExtractorAuto  = "auto"
	ExtractorAzure = "azure"
	ExtractorLocal = "local"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// Auth
	APIKey string

	// Document Intelligence layout service
	Extractor      string
	DIEndpoint     string
	DIAPIKey       string
	DIAPIVersion   string
	DIPollInterval time.Duration
	DIMaxPolls     int

	// Chat completions
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIBaseURL         string
	OpenAIAzureEndpoint   string
	OpenAIAzureAPIVersion string
	Temperature           float64
	LLMMaxRetries         int
	LLMTimeout            time.Duration

	// Pipeline
	MaxConcurrentCalls int
	SampleRows         int
	MaxChunkTokens     int
	SkipRoles          []string
	RunTimeout         time.Duration

	// Async jobs
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Upload limits
	MaxUploadBytes int64
}

var defaults = map[string]any{
	"port":                     "8090",
	"log_level":                "info",
	"extractor":                ExtractorAuto,
	"azure_api_version":        "2024-11-30",
	"azure_poll_interval":      2 * time.Second,
	"azure_max_polls":          150,
	"openai_model":             "gpt-4o-mini",
	"openai_azure_api_version": "2024-08-01-preview",
	"openai_temperature":       1.0,
	"llm_max_retries":          0,
	"llm_timeout":              2 * time.Minute,
	"max_concurrent_calls":     1,
	"sample_rows":              3,
	"max_chunk_tokens":         0,
	"skip_paragraph_roles":     "",
	"run_timeout":              10 * time.Minute,
	"worker_count":             2,
	"max_queue_size":           100,
	"job_ttl":                  time.Hour,
	"max_upload_bytes":         int64(52428800), // 50MB
}

// Load reads configuration from the environment and, when path is set, a
// YAML file. Environment variables win over the file. Keys are the
// lower-case form of the environment names, e.g. max_concurrent_calls.
func Load(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	// Names used by earlier deployments.
	_ = v.BindEnv("openai_azure_endpoint", "OPENAI_AZURE_ENDPOINT", "OPENAI_ENDPOINT")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := Config{
		Port:     v.GetString("port"),
		LogLevel: parseLevel(v.GetString("log_level")),

		APIKey: v.GetString("docbrief_api_key"),

		Extractor:      strings.ToLower(v.GetString("extractor")),
		DIEndpoint:     v.GetString("azure_endpoint"),
		DIAPIKey:       v.GetString("azure_api_key"),
		DIAPIVersion:   v.GetString("azure_api_version"),
		DIPollInterval: v.GetDuration("azure_poll_interval"),
		DIMaxPolls:     v.GetInt("azure_max_polls"),

		OpenAIAPIKey:          v.GetString("openai_api_key"),
		OpenAIModel:           v.GetString("openai_model"),
		OpenAIBaseURL:         v.GetString("openai_base_url"),
		OpenAIAzureEndpoint:   v.GetString("openai_azure_endpoint"),
		OpenAIAzureAPIVersion: v.GetString("openai_azure_api_version"),
		Temperature:           v.GetFloat64("openai_temperature"),
		LLMMaxRetries:         v.GetInt("llm_max_retries"),
		LLMTimeout:            v.GetDuration("llm_timeout"),

		MaxConcurrentCalls: v.GetInt("max_concurrent_calls"),
		SampleRows:         v.GetInt("sample_rows"),
		MaxChunkTokens:     v.GetInt("max_chunk_tokens"),
		SkipRoles:          splitList(v.GetString("skip_paragraph_roles")),
		RunTimeout:         v.GetDuration("run_timeout"),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),
		JobTTL:       v.GetDuration("job_ttl"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}

	if cfg.Extractor == "" || cfg.Extractor == ExtractorAuto {
		cfg.Extractor = ExtractorLocal
		if cfg.DIEndpoint != "" {
			cfg.Extractor = ExtractorAzure
		}
	}
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = 1
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Extractor {
	case ExtractorAzure:
		if c.DIEndpoint == "" || c.DIAPIKey == "" {
			return fmt.Errorf("AZURE_ENDPOINT and AZURE_API_KEY are required for the azure extractor")
		}
	case ExtractorLocal:
	default:
		return fmt.Errorf("unknown EXTRACTOR %q (want azure or local)", c.Extractor)
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	return nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
