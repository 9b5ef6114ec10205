// Package config loads and validates the refgen YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/refgen/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Modules  []Module       `yaml:"modules"`
	Exporter ExporterConfig `yaml:"exporter"`
	Output   OutputConfig   `yaml:"output"`
	History  HistoryConfig  `yaml:"history"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Module represents one source module to document
type Module struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Title  string `yaml:"title,omitempty"` // Human title, defaults to Name
}

// ExporterConfig controls how the external jsondoc exporter is invoked
type ExporterConfig struct {
	Binary     string `yaml:"binary,omitempty"`      // Defaults to $NIM, then "nim"
	Timeout    string `yaml:"timeout,omitempty"`     // Duration string, e.g. "60s"
	MaxRetries int    `yaml:"max_retries,omitempty"` // Retries for spawn failures only
	Backoff    string `yaml:"backoff,omitempty"`     // fixed|linear|exponential
}

// TimeoutDuration parses the exporter timeout; defaults applied by Load
// guarantee it is valid.
func (e ExporterConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`           // Generated pages land here
	CacheDir  string `yaml:"cache_dir,omitempty"` // Raw exporter JSON kept here for inspection
	Extension string `yaml:"extension,omitempty"` // Page file extension, defaults to "rst"
}

// HistoryConfig controls the optional run-history store
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite file; empty disables history
}

// MetricsConfig controls the optional Prometheus endpoint (watch mode)
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"` // e.g. ":9187"; empty disables
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load the first .env file that exists; existing process env wins
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Exporter.Binary == "" {
		if env := os.Getenv("NIM"); env != "" {
			config.Exporter.Binary = env
		} else {
			config.Exporter.Binary = "nim"
		}
	}
	if config.Exporter.Timeout == "" {
		config.Exporter.Timeout = "60s"
	}
	if config.Exporter.MaxRetries < 0 {
		config.Exporter.MaxRetries = 0
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "docs/api"
	}
	if config.Output.CacheDir == "" {
		config.Output.CacheDir = "docs/_nim_json"
	}
	if config.Output.Extension == "" {
		config.Output.Extension = "rst"
	}
	for i := range config.Modules {
		if config.Modules[i].Title == "" {
			config.Modules[i].Title = config.Modules[i].Name
		}
	}
}

func validate(config *Config) error {
	if _, err := time.ParseDuration(config.Exporter.Timeout); err != nil {
		return errors.ValidationFailed("exporter.timeout", fmt.Sprintf("not a duration: %q", config.Exporter.Timeout))
	}
	if len(config.Modules) == 0 {
		return errors.ValidationFailed("modules", "at least one module must be configured")
	}
	seen := make(map[string]bool, len(config.Modules))
	for _, m := range config.Modules {
		if m.Name == "" {
			return errors.ValidationFailed("modules.name", "module name must not be empty")
		}
		if m.Source == "" {
			return errors.ValidationFailed("modules.source", fmt.Sprintf("module %q has no source path", m.Name))
		}
		if seen[m.Name] {
			return errors.ValidationFailed("modules.name", fmt.Sprintf("duplicate module name %q", m.Name))
		}
		seen[m.Name] = true
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Modules: []Module{
			{Name: "mylib", Source: "src/mylib.nim", Title: "mylib — Top-level API"},
			{Name: "internals", Source: "src/mylib/internals.nim", Title: "internals — Implementation details"},
		},
		Exporter: ExporterConfig{
			Binary:  "nim",
			Timeout: "60s",
		},
		Output: OutputConfig{
			Directory: "docs/api",
			CacheDir:  "docs/_nim_json",
			Extension: "rst",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	header := "# refgen configuration\n# Modules are processed (and indexed) in declaration order.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
