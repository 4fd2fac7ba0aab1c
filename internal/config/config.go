package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "longwrite.yaml"

type LLMConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	OllamaBaseURL string `yaml:"ollama_base_url"`
	Timeout       int    `yaml:"timeout"` // seconds
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

type WriterConfig struct {
	TargetWords     int    `yaml:"target_words"`
	Parts           int    `yaml:"parts"`
	ChaptersPerPart int    `yaml:"chapters_per_part"`
	MaxRetries      int    `yaml:"max_retries"`
	Style           string `yaml:"style"`
	TopK            int    `yaml:"top_k"`
	ChunkChars      int    `yaml:"chunk_chars"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type OutputConfig struct {
	Dir  string `yaml:"dir"`
	HTML bool   `yaml:"html"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Writer    WriterConfig    `yaml:"writer"`
	Storage   StorageConfig   `yaml:"storage"`
	Output    OutputConfig    `yaml:"output"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "openrouter",
			Model:         "ollama/qwen2.5:3b",
			OllamaBaseURL: "http://localhost:11434/v1",
			Timeout:       60,
		},
		Embedding: EmbeddingConfig{
			Provider: "hash",
		},
		Writer: WriterConfig{
			TargetWords:     20000,
			Parts:           5,
			ChaptersPerPart: 6,
			MaxRetries:      2,
			Style:           "handbook",
			TopK:            5,
			ChunkChars:      1500,
		},
		Storage: StorageConfig{DBPath: "longwrite.db"},
		Output:  OutputConfig{Dir: "output"},
	}
}

// LoadConfig reads .env, then the YAML file at path over the defaults, then
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if provider := os.Getenv("LONGWRITE_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		cfg.LLM.OllamaBaseURL = url
	}
	if apiKey := os.Getenv("LONGWRITE_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(cfg.LLM.Provider)
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = providerKey(cfg.Embedding.Provider)
	}
	if raw := os.Getenv("MAX_HANDBOOK_WORDS"); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			cfg.Writer.TargetWords = n
		}
	}
}

// providerKey returns the conventional environment key for a provider.
func providerKey(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openrouter":
		return os.Getenv("OPENROUTER_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "deepseek":
		return os.Getenv("DEEPSEEK_API_KEY")
	}
	return ""
}

// Validate lists configuration problems. An empty result means the config is usable.
func (c *Config) Validate() []string {
	var problems []string
	provider := strings.ToLower(c.LLM.Provider)
	switch provider {
	case "openrouter", "openai", "deepseek", "gemini":
		if c.LLM.APIKey == "" && !strings.HasPrefix(c.LLM.Model, "ollama/") {
			problems = append(problems, fmt.Sprintf("llm.api_key is not set for provider %s", provider))
		}
		if provider == "deepseek" && c.LLM.BaseURL == "" {
			problems = append(problems, "llm.base_url is required for provider deepseek")
		}
	case "ollama", "mock":
	default:
		problems = append(problems, fmt.Sprintf("unknown llm.provider %q", c.LLM.Provider))
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "gemini", "openai", "openrouter":
		if c.Embedding.APIKey == "" {
			problems = append(problems, fmt.Sprintf("embedding.api_key is not set for provider %s", c.Embedding.Provider))
		}
	case "ollama", "hash", "mock":
	default:
		problems = append(problems, fmt.Sprintf("unknown embedding.provider %q", c.Embedding.Provider))
	}

	if c.Writer.TargetWords <= 0 {
		problems = append(problems, "writer.target_words must be positive")
	}
	if c.Writer.Parts <= 0 || c.Writer.ChaptersPerPart <= 0 {
		problems = append(problems, "writer.parts and writer.chapters_per_part must be positive")
	}
	if c.Writer.MaxRetries < 0 {
		problems = append(problems, "writer.max_retries must not be negative")
	}
	if c.Storage.DBPath == "" {
		problems = append(problems, "storage.db_path is empty")
	}
	return problems
}
