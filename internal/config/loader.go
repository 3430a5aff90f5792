package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".errfmt.yml"

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

var validate = validator.New()

// Config is the content of .errfmt.yml.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
}

type OutputConfig struct {
	// Color is auto, always or never.
	Color string `yaml:"color" validate:"oneof=auto always never"`
}

// DatabaseConfig configures the exec command. Timeouts are in seconds,
// zero disables them.
type DatabaseConfig struct {
	ConnectionString string `yaml:"connection_string"`
	ConnectTimeout   int    `yaml:"connect_timeout" validate:"gte=0"`
	StatementTimeout int    `yaml:"statement_timeout" validate:"gte=0"`
	MaxConnections   int32  `yaml:"max_connections" validate:"gte=1"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output:   OutputConfig{Color: "auto"},
		Database: DatabaseConfig{
			ConnectionString: "postgresql://postgres@localhost:5432/postgres?sslmode=disable",
			ConnectTimeout:   10,
			StatementTimeout: 30,
			MaxConnections:   1,
		},
	}
}

func (d DatabaseConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(d.ConnectTimeout) * time.Second
}

func (d DatabaseConfig) StatementTimeoutDuration() time.Duration {
	return time.Duration(d.StatementTimeout) * time.Second
}

// Loader reads the config file and applies environment overrides.
type Loader struct {
	filePath string
	explicit bool
}

// NewLoader looks for .errfmt.yml in workDir.
func NewLoader(workDir string) *Loader {
	return &Loader{filePath: filepath.Join(workDir, FileName)}
}

// NewFileLoader reads the config from an explicit path. A missing file is
// always an error.
func NewFileLoader(path string) *Loader {
	return &Loader{
		filePath: path,
		explicit: true,
	}
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and validates the config file. Keys missing from the file
// keep their default values.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.filePath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.filePath, err)
	}

	applyEnv(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.filePath, err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file found by NewLoader
// yields the defaults.
func (l *Loader) LoadOrDefault() (*Config, error) {
	cfg, err := l.Load()
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, ErrNotFound) && !l.explicit {
		cfg = Default()
		applyEnv(cfg)
		return cfg, nil
	}
	return nil, err
}

// applyEnv lets DATABASE_URL (Heroku, Railway, etc.) override the file.
func applyEnv(cfg *Config) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		cfg.Database.ConnectionString = databaseURL
	}
}
