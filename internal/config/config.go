package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override the config file.
// Nested keys are separated by a double underscore: WRAP_SERVER__PORT.
const EnvPrefix = "WRAP_"

// FileNames are the config files LoadFromDir looks for, in order.
var FileNames = []string{"wrap.yaml", "wrap.yml"}

// Config represents the wrap configuration
type Config struct {
	Title     string          `yaml:"title" koanf:"title"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Deck      DeckConfig      `yaml:"deck" koanf:"deck"`
	Bookmarks BookmarksConfig `yaml:"bookmarks" koanf:"bookmarks"`
	Features  FeaturesConfig  `yaml:"features" koanf:"features"`
	RateLimit RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-" koanf:"-"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port  int    `yaml:"port" koanf:"port" validate:"min=1,max=65535"`
	Host  string `yaml:"host" koanf:"host" validate:"required"`
	Debug bool   `yaml:"debug" koanf:"debug"`
	// Ban lists glob patterns (relative to the deck root) the static file
	// handler refuses to serve.
	Ban         []string `yaml:"ban,omitempty" koanf:"ban"`
	CORSOrigins []string `yaml:"cors_origins,omitempty" koanf:"cors_origins"`
}

// DeckConfig controls how decks are found and parsed
type DeckConfig struct {
	Index    string `yaml:"index" koanf:"index" validate:"required"`
	Markdown bool   `yaml:"markdown" koanf:"markdown"` // Convert data-format="markdown" slides
}

// BookmarksConfig selects where the last viewed slide is remembered
type BookmarksConfig struct {
	Driver string `yaml:"driver" koanf:"driver" validate:"oneof=memory sqlite postgres"`
	DSN    string `yaml:"dsn,omitempty" koanf:"dsn" validate:"required_unless=Driver memory"`
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	HotReload   bool `yaml:"hot_reload" koanf:"hot_reload"`
	Compression bool `yaml:"compression" koanf:"compression"`
	Metrics     bool `yaml:"metrics" koanf:"metrics"`
}

// RateLimitConfig holds per-client rate limiting; zero disables it
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" koanf:"burst" validate:"gte=0"`
	MaxTrackedIPs     int     `yaml:"max_tracked_ips,omitempty" koanf:"max_tracked_ips" validate:"gte=0"`
}

// Enabled reports whether requests are rate limited.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// GetBurst returns the burst size, at least one request
func (c RateLimitConfig) GetBurst() int {
	if c.Burst <= 0 {
		return 1
	}
	return c.Burst
}

// GetMaxTrackedIPs returns how many client addresses the limiter tracks
// (default: 10000)
func (c RateLimitConfig) GetMaxTrackedIPs() int {
	if c.MaxTrackedIPs <= 0 {
		return 10000
	}
	return c.MaxTrackedIPs
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Title: "wrap",
		Server: ServerConfig{
			Port:  8080,
			Host:  "localhost",
			Debug: false,
		},
		Deck: DeckConfig{
			Index:    "index.html",
			Markdown: true,
		},
		Bookmarks: BookmarksConfig{
			Driver: "memory",
		},
		Features: FeaturesConfig{
			HotReload:   true,
			Compression: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

// Load reads configuration from a YAML file, then overlays WRAP_*
// environment variables. A missing file yields the defaults plus the
// environment.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
			cfg.Path = configPath
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// envKey maps WRAP_RATE_LIMIT__BURST to rate_limit.burst.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadFromDir looks for wrap.yaml, then wrap.yml, in the given directory.
// If neither is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	// Namespace is "Config.server.port"; drop the root type.
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
