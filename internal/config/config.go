package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "https://openrouter.ai/api/v1"
	DefaultModel        = "anthropic/claude-sonnet-4"
	DefaultSegmentModel = "openai/gpt-5-nano"
	DefaultJudgeModel   = "openai/gpt-4o-mini"
)

// Config represents the complete docent configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Agent     AgentConfig     `yaml:"agent"`
	Contracts ContractsConfig `yaml:"contracts"`
	Finance   FinanceConfig   `yaml:"finance"`
	Hooks     HooksConfig     `yaml:"hooks"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// APIConfig holds the chat completion endpoint settings
type APIConfig struct {
	Key         string  `yaml:"key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AgentConfig holds agent loop settings
type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	SegmentModel  string `yaml:"segment_model"`
	JudgeModel    string `yaml:"judge_model"`
}

// ContractsConfig locates the contract document directory
type ContractsConfig struct {
	Dir string `yaml:"dir"`
}

// FinanceConfig holds the finance document pipeline settings
type FinanceConfig struct {
	CacheDir     string `yaml:"cache_dir"`
	MetadataFile string `yaml:"metadata_file"`
	MistralKey   string `yaml:"mistral_key"`
}

// HooksConfig contains hook-related settings
type HooksConfig struct {
	// CommandConfirm enables user confirmation before shell commands
	CommandConfirm bool `yaml:"command_confirm"`
}

// MCPConfig contains MCP-specific settings
type MCPConfig struct {
	Servers []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig defines a single MCP server
type MCPServerConfig struct {
	Name      string            `yaml:"name"`      // Unique server identifier
	Transport string            `yaml:"transport"` // "stdio" (only supported transport)
	Command   string            `yaml:"command"`   // Executable to run
	Args      []string          `yaml:"args"`      // Command arguments
	Env       map[string]string `yaml:"env"`       // Environment variables with ${VAR} support
	Disabled  bool              `yaml:"disabled"`  // Skip this server if true
}

// Default returns a config populated with default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			Temperature: 0.0,
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			SegmentModel:  DefaultSegmentModel,
			JudgeModel:    DefaultJudgeModel,
		},
		Contracts: ContractsConfig{
			Dir: "contracts",
		},
		Finance: FinanceConfig{
			CacheDir: ".finance",
		},
	}
}

// Load reads and parses the YAML config file on top of defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations.
// Checks: ./docent.yaml, ~/.config/docent/docent.yaml, /etc/docent/docent.yaml
func LoadWithDefaults() (*Config, error) {
	locations := []string{
		"./docent.yaml",
		"./configs/docent.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "docent", "docent.yaml"))
	}

	locations = append(locations, "/etc/docent/docent.yaml")

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	// No config found - defaults only (not an error)
	return Default(), nil
}

// ApplyEnv overrides config values from environment variables.
// The variable names match the original evaluation environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LITELLM_MODEL"); v != "" {
		c.API.Model = v
	}
	if v := os.Getenv("LITELLM_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid LITELLM_TEMPERATURE %q: %w", v, err)
		}
		c.API.Temperature = float32(t)
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_TOKENS %q: %w", v, err)
		}
		c.API.MaxTokens = n
	}
	if v := os.Getenv("MISTRAL_API_KEY"); v != "" {
		c.Finance.MistralKey = v
	}
	return nil
}

// Validate checks config correctness
func (c *Config) Validate() error {
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %.2f", c.API.Temperature)
	}

	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("max_iterations cannot be negative")
	}

	if len(c.MCP.Servers) == 0 {
		return nil
	}

	names := make(map[string]bool)
	for i, server := range c.MCP.Servers {
		if server.Name == "" {
			return fmt.Errorf("server #%d: name cannot be empty", i+1)
		}

		if names[server.Name] {
			return fmt.Errorf("duplicate server name: %s", server.Name)
		}
		names[server.Name] = true

		if err := server.Validate(); err != nil {
			return fmt.Errorf("server %s: %w", server.Name, err)
		}
	}

	return nil
}

// Validate checks a single server config
func (s *MCPServerConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	// Server names become tool name prefixes, so keep them identifier-safe
	for _, ch := range s.Name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-') {
			return fmt.Errorf("server name '%s' contains invalid character '%c' (only alphanumeric, underscore, and hyphen allowed)", s.Name, ch)
		}
	}

	if s.Transport == "" {
		return fmt.Errorf("transport is required")
	}

	if s.Transport != "stdio" {
		return fmt.Errorf("unsupported transport: %s (only 'stdio' is supported)", s.Transport)
	}

	if s.Command == "" {
		return fmt.Errorf("command is required")
	}

	return nil
}
