package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tomasbasham/formjson"
)

// Config represents the complete configuration for formjson
type Config struct {
	Selector string         `yaml:"selector"`
	Encoding EncodingConfig `yaml:"encoding"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// EncodingConfig controls how form data is nested
type EncodingConfig struct {
	IgnoreDeepKey bool `yaml:"ignore_deep_key"`
	Compact       bool `yaml:"compact"`
	MaxIndex      int  `yaml:"max_index"`
}

// OutputConfig controls how JSON is written
type OutputConfig struct {
	Indent string `yaml:"indent"`
}

// ServerConfig controls the serve command
type ServerConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Selector: "form",
		Encoding: EncodingConfig{
			IgnoreDeepKey: false,
			Compact:       true,
			MaxIndex:      formjson.DefaultMaxIndex,
		},
		Output: OutputConfig{
			Indent: "",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
			Path:   "/encode",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in the current directory and its
// parents
func FindConfigFile() string {
	configNames := []string{".formjson.yml", ".formjson.yaml", "formjson.yml", "formjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the configuration for values the encoder cannot use
func (c *Config) Validate() error {
	if c.Encoding.MaxIndex < 0 {
		return fmt.Errorf("encoding.max_index must not be negative, got %d", c.Encoding.MaxIndex)
	}
	if strings.TrimSpace(c.Selector) == "" {
		return fmt.Errorf("selector must not be empty")
	}
	if c.Server.Path == "" || !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /, got %q", c.Server.Path)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// EncodeOptions translates the encoding settings into encoder options
func (c *Config) EncodeOptions() []formjson.Option {
	opts := []formjson.Option{formjson.WithMaxIndex(c.Encoding.MaxIndex)}
	if c.Encoding.IgnoreDeepKey {
		opts = append(opts, formjson.WithoutNesting())
	}
	if !c.Encoding.Compact {
		opts = append(opts, formjson.WithoutCompaction())
	}
	return opts
}
