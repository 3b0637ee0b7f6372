package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries the external-service credentials and runtime settings the
// pipeline and server need. It is built once at startup and passed down
// explicitly; nothing reads the environment after Load returns.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		// DatabaseURL selects the backing store. A postgres:// URL uses
		// Postgres; anything else is treated as a SQLite file path.
		DatabaseURL string `yaml:"database_url"`
		Workdir     string `yaml:"workdir"`
		AssetRoot   string `yaml:"asset_root"`
	} `yaml:"storage"`
	LLM struct {
		DefaultModel string `yaml:"default_model"`
		OpenAIAPIKey string `yaml:"openai_api_key"`
		GeminiAPIKey string `yaml:"gemini_api_key"`
		OllamaURL    string `yaml:"ollama_url"`
	} `yaml:"llm"`
	Tools struct {
		TavilyAPIKey     string `yaml:"tavily_api_key"`
		PerplexityAPIKey string `yaml:"perplexity_api_key"`
	} `yaml:"tools"`
}

// Load reads configuration in priority order: .env file, optional YAML
// config, then environment variable overrides. A missing config file is not
// an error; missing optional credentials degrade the matching tool instead
// of failing startup.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	overlay(&cfg.Server.Addr, "SCRIPTOR_ADDR")
	overlay(&cfg.Storage.DatabaseURL, "DATABASE_URL")
	overlay(&cfg.Storage.Workdir, "SCRIPTOR_WORKDIR")
	overlay(&cfg.Storage.AssetRoot, "SCRIPTOR_ASSET_ROOT")
	overlay(&cfg.LLM.DefaultModel, "SCRIPTOR_DEFAULT_MODEL")
	overlay(&cfg.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	overlay(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&cfg.LLM.OllamaURL, "OLLAMA_URL")
	overlay(&cfg.Tools.TavilyAPIKey, "TAVILY_API_KEY")
	overlay(&cfg.Tools.PerplexityAPIKey, "PERPLEXITY_API_KEY")

	cfg.applyDefaults()
	return cfg, nil
}

func overlay(target *string, envName string) {
	if value := os.Getenv(envName); value != "" {
		*target = value
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = "scriptor.db"
	}
	if c.Storage.Workdir == "" {
		c.Storage.Workdir = "topics"
	}
	if c.Storage.AssetRoot == "" {
		c.Storage.AssetRoot = "results"
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = "ollama:llama3"
	}
	if c.LLM.OllamaURL == "" {
		c.LLM.OllamaURL = "http://localhost:11434/v1"
	}
}
