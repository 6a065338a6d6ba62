package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Lemmatizer LemmatizerConfig `yaml:"lemmatizer"`
	Summaries  SummariesConfig  `yaml:"summaries"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains settings for the OpenAI-compatible upstream.
type LLMConfig struct {
	APIKey           string  `yaml:"apiKey"`
	DefaultEndpoint  string  `yaml:"defaultEndpoint"`
	Model            string  `yaml:"model"`
	Temperature      float32 `yaml:"temperature"`
	MaxTokens        int     `yaml:"maxTokens"`
	TopK             int     `yaml:"topK"`
	TopP             float32 `yaml:"topP"`
	FrequencyPenalty float32 `yaml:"frequencyPenalty"`
	NumBulletPoints  int     `yaml:"numBulletPoints"`
	TokenizerModel   string  `yaml:"tokenizerModel"`
}

// LemmatizerConfig points at the word-analysis NLP service.
type LemmatizerConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// SummariesConfig controls summary record persistence.
type SummariesConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AnalysisConfig controls the grounding analysis cache backend.
type AnalysisConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_DEFAULT_ENDPOINT"); v != "" {
		cfg.LLM.DefaultEndpoint = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}
	if v := os.Getenv("LLM_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.TopK = parsed
		}
	}
	if v := os.Getenv("LLM_TOP_P"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.TopP = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_FREQUENCY_PENALTY"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.FrequencyPenalty = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_NUM_BULLET_POINTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.NumBulletPoints = parsed
		}
	}
	if v := os.Getenv("LLM_TOKENIZER_MODEL"); v != "" {
		cfg.LLM.TokenizerModel = v
	}
	if v := os.Getenv("LEMMATIZER_BASE_URL"); v != "" {
		cfg.Lemmatizer.BaseURL = v
	}
	if v := os.Getenv("LEMMATIZER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Lemmatizer.Timeout = parsed
		}
	}
	if v := os.Getenv("SUMMARIES_POSTGRES_DSN"); v != "" {
		cfg.Summaries.Postgres.DSN = v
	}
	if v := os.Getenv("SUMMARIES_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Summaries.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("SUMMARIES_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Summaries.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ANALYSIS_VALKEY_ENABLED"); v != "" {
		cfg.Analysis.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ANALYSIS_VALKEY_ADDR"); v != "" {
		cfg.Analysis.Valkey.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			ReadTimeout: 15 * time.Second,
			// Streaming generations stay open for minutes; the write
			// deadline is disabled so the server does not cut SSE bodies.
			WriteTimeout: 0,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			DefaultEndpoint:  "https://api.openai.com",
			Model:            "gpt-3.5-turbo",
			Temperature:      0.3,
			MaxTokens:        2048,
			TopK:             50,
			TopP:             0.9,
			FrequencyPenalty: 0,
			NumBulletPoints:  5,
			TokenizerModel:   "gpt-3.5-turbo",
		},
		Lemmatizer: LemmatizerConfig{
			BaseURL: "http://localhost:8001",
			Timeout: 120 * time.Second,
		},
		Summaries: SummariesConfig{
			Postgres: PostgresConfig{
				DSN:      "",
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Analysis: AnalysisConfig{
			Valkey: ValkeyConfig{
				Enabled: false,
				Addr:    "",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.LLM.DefaultEndpoint == "" {
		return errors.New("llm.defaultEndpoint cannot be empty")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.maxTokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		return errors.New("llm.topP must be within [0, 1]")
	}
	if c.LLM.NumBulletPoints <= 0 {
		return errors.New("llm.numBulletPoints must be positive")
	}
	if c.Lemmatizer.BaseURL == "" {
		return errors.New("lemmatizer.baseUrl cannot be empty")
	}
	if c.Analysis.Valkey.Enabled && strings.TrimSpace(c.Analysis.Valkey.Addr) == "" {
		return errors.New("analysis.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
