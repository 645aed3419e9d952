package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/memorymesh/logging"
)

// Backend drivers.
const (
	DriverHTTP   = "http"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned by Validate for unsupported backend drivers.
var ErrUnknownDriver = errors.New("unknown backend driver")

// Config represents the complete MemoryMesh configuration.
type Config struct {
	Backend      BackendConfig      `yaml:"backend" toml:"backend"`
	Embeddings   EmbeddingsConfig   `yaml:"embeddings" toml:"embeddings"`
	Logging      LoggingConfig      `yaml:"logging" toml:"logging"`
	Conversation ConversationConfig `yaml:"conversation" toml:"conversation"`
	ChatBuffer   ChatBufferConfig   `yaml:"chat_buffer" toml:"chat_buffer"`
	AgentHook    AgentHookConfig    `yaml:"agent_hook" toml:"agent_hook"`
}

// BackendConfig selects and configures the memory backend.
type BackendConfig struct {
	Driver string `yaml:"driver" toml:"driver"`   // http, memory or sqlite
	UserID string `yaml:"user_id" toml:"user_id"` // user, session or crew identifier
	APIKey string `yaml:"api_key" toml:"api_key"`
	APIURL string `yaml:"api_url" toml:"api_url"` // endpoint override (http only)
	Path   string `yaml:"path" toml:"path"`       // database file (sqlite only)
}

// EmbeddingsConfig enables semantic ranking for local backends.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider" toml:"provider"` // "" or openai
	Model    string `yaml:"model" toml:"model"`
	APIKey   string `yaml:"api_key" toml:"api_key"`
	BaseURL  string `yaml:"base_url" toml:"base_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// ConversationConfig configures the conversation memory adapter.
type ConversationConfig struct {
	MemoryKey      string `yaml:"memory_key" toml:"memory_key"`
	InputKey       string `yaml:"input_key" toml:"input_key"`
	OutputKey      string `yaml:"output_key" toml:"output_key"`
	ReturnMessages *bool  `yaml:"return_messages" toml:"return_messages"`
}

// ChatBufferConfig configures the chat buffer adapter.
type ChatBufferConfig struct {
	TokenLimit int `yaml:"token_limit" toml:"token_limit"`
}

// AgentHookConfig configures the agent message hook.
type AgentHookConfig struct {
	TrackEscalations *bool `yaml:"track_escalations" toml:"track_escalations"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverHTTP
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Conversation.MemoryKey == "" {
		c.Conversation.MemoryKey = "history"
	}
	if c.Conversation.InputKey == "" {
		c.Conversation.InputKey = "input"
	}
	if c.Conversation.OutputKey == "" {
		c.Conversation.OutputKey = "output"
	}
	if c.Conversation.ReturnMessages == nil {
		c.Conversation.ReturnMessages = boolPtr(true)
	}
	if c.ChatBuffer.TokenLimit <= 0 {
		c.ChatBuffer.TokenLimit = 3000
	}
	if c.AgentHook.TrackEscalations == nil {
		c.AgentHook.TrackEscalations = boolPtr(true)
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Backend.UserID == "" {
		return fmt.Errorf("backend.user_id is required")
	}
	switch c.Backend.Driver {
	case DriverHTTP:
		if c.Backend.APIKey == "" {
			return fmt.Errorf("backend.api_key is required for the http driver")
		}
	case DriverSQLite:
		if c.Backend.Path == "" {
			return fmt.Errorf("backend.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w %q", ErrUnknownDriver, c.Backend.Driver)
	}
	switch c.Embeddings.Provider {
	case "", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Logger builds a MeshLogger from the logging section.
func (c *Config) Logger() *logging.MeshLogger {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return logging.NewSlogLogger(level, c.Logging.Format, false)
}

func boolPtr(b bool) *bool { return &b }
