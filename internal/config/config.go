package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/kv"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Grading   catalog.Rates   `yaml:"grading"`
	Assistant AssistantConfig `yaml:"assistant"`
	TUI       TUIConfig       `yaml:"tui"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AuthToken      string   `yaml:"auth_token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxConns       int      `yaml:"max_conns"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite or memory
	Dir     string `yaml:"dir"`     // empty selects kv.DefaultDir
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json or auto
}

type CatalogConfig struct {
	Size int   `yaml:"size"`
	Seed int64 `yaml:"seed"`
}

type AssistantConfig struct {
	ThinkingDelay time.Duration `yaml:"thinking_delay"`
}

type TUIConfig struct {
	URL       string        `yaml:"url"`
	AutoClose time.Duration `yaml:"auto_close"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8642,
			Host:     "127.0.0.1",
			MaxConns: 32,
		},
		Storage: StorageConfig{
			Backend: kv.BackendFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Catalog: CatalogConfig{
			Size: catalog.DefaultSize,
			Seed: 1,
		},
		Grading: catalog.DefaultRates(),
		Assistant: AssistantConfig{
			ThinkingDelay: time.Second,
		},
		TUI: TUIConfig{
			URL:       "http://127.0.0.1:8642",
			AutoClose: 2 * time.Second,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config { return defaultConfig() }

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Storage.Backend {
	case kv.BackendFile, kv.BackendSQLite, kv.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q: want file, sqlite or memory", c.Storage.Backend))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json", "auto":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text, json or auto", c.Log.Format))
	}
	if c.Catalog.Size < 1 {
		errs = append(errs, fmt.Errorf("catalog.size must be positive, got %d", c.Catalog.Size))
	}
	for name, r := range map[string]float64{
		"beginner":     c.Grading.Beginner,
		"intermediate": c.Grading.Intermediate,
		"advanced":     c.Grading.Advanced,
		"expert":       c.Grading.Expert,
	} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("grading.%s %.2f outside [0,1]", name, r))
		}
	}
	if c.Assistant.ThinkingDelay < 0 {
		errs = append(errs, errors.New("assistant.thinking_delay must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DefaultPath returns ~/.config/code-arsenal/config.yaml, respecting
// XDG_CONFIG_HOME if set.
func DefaultPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "code-arsenal", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "code-arsenal", "config.yaml")
}
