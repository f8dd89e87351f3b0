package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML
// and ENV. There is no process-wide instance; callers pass it explicitly.
type Config struct {
	Model   ModelConfig   `mapstructure:"model"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Output  OutputConfig  `mapstructure:"output"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ModelConfig selects the chat model.
type ModelConfig struct {
	Name  string `mapstructure:"name"`  // Ollama model tag
	Think bool   `mapstructure:"think"` // request thinking tokens
}

// OllamaConfig points at the Ollama server.
type OllamaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // bounds one streamed turn end to end
}

// GitHubConfig controls repository discovery and the gh binary.
type GitHubConfig struct {
	Owner     string        `mapstructure:"owner"`      // gh search owner filter, e.g. @me
	RepoLimit int           `mapstructure:"repo_limit"` // maximum repositories per batch
	Binary    string        `mapstructure:"binary"`     // gh executable name or path
	Timeout   time.Duration `mapstructure:"timeout"`    // per gh invocation
}

// OutputConfig locates the description ledger.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// AgentConfig describes analysis loop parameters.
type AgentConfig struct {
	MaxTurns     int           `mapstructure:"max_turns"`
	TurnTimeout  time.Duration `mapstructure:"turn_timeout"`
	MaxFiles     int           `mapstructure:"max_files"`      // listing cap
	MaxFileBytes int           `mapstructure:"max_file_bytes"` // file content budget
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from the provided path, or from
// configs/config.yaml when present; a missing file yields the defaults.
// Environment variables override file values (prefix: REPOLENS_, dots
// replaced with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REPOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFound) && path == "") {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file is fine; defaults plus ENV cover a standard run.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model.name", "qwen3-vl:latest")
	v.SetDefault("model.think", true)

	v.SetDefault("ollama.base_url", "http://127.0.0.1:11434")
	v.SetDefault("ollama.timeout", 5*time.Minute)

	v.SetDefault("github.owner", "@me")
	v.SetDefault("github.repo_limit", 300)
	v.SetDefault("github.binary", "gh")
	v.SetDefault("github.timeout", 30*time.Second)

	v.SetDefault("output.path", "repo_descriptions.csv")

	v.SetDefault("agent.max_turns", 6)
	v.SetDefault("agent.turn_timeout", 3*time.Minute)
	v.SetDefault("agent.max_files", 80)
	v.SetDefault("agent.max_file_bytes", 6000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model.Name) == "" {
		return errors.New("model.name must be set")
	}

	if c.Ollama.Timeout <= 0 {
		return errors.New("ollama.timeout must be > 0")
	}

	if strings.TrimSpace(c.GitHub.Owner) == "" {
		return errors.New("github.owner must be set")
	}
	if c.GitHub.RepoLimit <= 0 {
		return errors.New("github.repo_limit must be > 0")
	}
	if c.GitHub.Timeout <= 0 {
		return errors.New("github.timeout must be > 0")
	}

	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must be set")
	}

	if c.Agent.MaxTurns <= 0 {
		return errors.New("agent.max_turns must be > 0")
	}
	if c.Agent.TurnTimeout <= 0 {
		return errors.New("agent.turn_timeout must be > 0")
	}
	if c.Agent.MaxFiles <= 0 {
		return errors.New("agent.max_files must be > 0")
	}
	if c.Agent.MaxFileBytes <= 0 {
		return errors.New("agent.max_file_bytes must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Addr) == "" {
		return errors.New("metrics.addr must be set when metrics.enabled is true")
	}

	return nil
}
