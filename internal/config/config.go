package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
	BackendNone   Backend = "none"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

type StorageConfig struct {
	Backend Backend `toml:"backend"` // json | sqlite | none
	Path    string  `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	ShowHelp bool `toml:"show_help"`
}

type KeyConfig struct {
	Quit   string `toml:"quit"`
	Add    string `toml:"add"`
	Delete string `toml:"delete"`
	Toggle string `toml:"toggle"`
	Yank   string `toml:"yank"`
	Help   string `toml:"help"`
}

func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".todo/log",
			},
		},
		UI: UIConfig{
			ShowHelp: true,
		},
		Keys: KeyConfig{
			Quit:   "q",
			Add:    "a",
			Delete: "d",
			Toggle: "space",
			Yank:   "y",
			Help:   "?",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.Storage.Backend = Backend(strings.TrimSpace(strings.ToLower(string(cfg.Storage.Backend))))
	cfg.Logging.Level = strings.TrimSpace(strings.ToLower(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// StoragePath resolves the configured store path, falling back to the per-backend default.
func (c Config) StoragePath(jsonPath, dbPath string) string {
	if path := strings.TrimSpace(c.Storage.Path); path != "" {
		return path
	}
	switch c.Storage.Backend {
	case BackendSQLite:
		return dbPath
	case BackendNone:
		return ""
	default:
		return jsonPath
	}
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return out, nil
}

// WriteIfMissing writes c to path unless a file already exists there.
func WriteIfMissing(path string, c Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	content, err := Encode(c)
	if err != nil {
		return false, err
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
