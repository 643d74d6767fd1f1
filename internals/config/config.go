// Package config loads the coursebot configuration from a YAML file.
// Values in the form ${VAR_NAME} are expanded from the environment, which
// keeps API keys out of the file itself.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Weaviate   WeaviateConfig   `yaml:"weaviate"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Courses    CoursesConfig    `yaml:"courses"`
	Server     ServerConfig     `yaml:"server"`
	Slack      SlackConfig      `yaml:"slack"`
	Session    SessionConfig    `yaml:"session"`
	Search     SearchConfig     `yaml:"search"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

type WeaviateConfig struct {
	Host   string `yaml:"host"`
	Scheme string `yaml:"scheme"`
}

type EmbeddingsConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CoursesConfig names where course documents come from: a local folder, a
// repository, or both.
type CoursesConfig struct {
	DocsDir     string `yaml:"docs_dir"`
	RepoURL     string `yaml:"repo_url"`
	RepoDir     string `yaml:"repo_dir"`
	GitHubToken string `yaml:"github_token"`
	GitLabToken string `yaml:"gitlab_token"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	AppToken string `yaml:"app_token"`
}

type SessionConfig struct {
	MaxHistory int `yaml:"max_history"`
}

type SearchConfig struct {
	MaxResults   int `yaml:"max_results"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Weaviate.Host == "" {
		c.Weaviate.Host = "localhost:8080"
	}
	if c.Weaviate.Scheme == "" {
		c.Weaviate.Scheme = "http"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8000"
	}
}

func (c *Config) Validate() error {
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic.api_key is required")
	}
	if c.Slack.Enabled {
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack.bot_token is required when slack is enabled")
		}
		if c.Slack.AppToken == "" {
			return fmt.Errorf("slack.app_token is required when slack is enabled")
		}
	}
	if c.Search.ChunkOverlap > 0 && c.Search.ChunkSize > 0 && c.Search.ChunkOverlap >= c.Search.ChunkSize {
		return fmt.Errorf("search.chunk_overlap must be smaller than search.chunk_size")
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(re.FindStringSubmatch(match)[1])
	})
}
