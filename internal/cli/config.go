package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

// Environment variables read on top of the config file.
const (
	envDir      = "TREEDEPTH_DIR"
	envRedisURL = "TREEDEPTH_REDIS_URL"
	envWorkers  = "TREEDEPTH_WORKERS"
)

// Config is the optional config file ($XDG_CONFIG_HOME/treedepth/config.toml).
// Command-line flags override environment variables, which override the file.
//
//	dir = "/srv/nuget"
//	format = "text"
//	workers = 8
//	strict_ids = true
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	memory_entries = 4096
type Config struct {
	Dir       string      `toml:"dir"`
	Format    string      `toml:"format"`
	Workers   int         `toml:"workers"`
	StrictIDs bool        `toml:"strict_ids"`
	Cache     CacheConfig `toml:"cache"`
}

// CacheConfig selects the archive record cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	// MemoryEntries bounds the in-process tier; 0 selects the default.
	MemoryEntries int `toml:"memory_entries"`
}

func defaultConfig() Config {
	return Config{Format: "text"}
}

// configPath returns the default config file location using the XDG standard
// (~/.config/treedepth/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path. An empty path means the default
// location, which may be absent; an explicit path must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			cfg.applyEnv(os.Getenv)
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		cfg = defaultConfig()
	case os.IsNotExist(err):
		return cfg, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return cfg, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, cfg.validate()
}

// applyEnv overlays environment variables on cfg.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(envDir)); v != "" {
		c.Dir = v
	}
	if v := strings.TrimSpace(getenv(envRedisURL)); v != "" {
		c.Cache.RedisURL = v
	}
	if v := strings.TrimSpace(getenv(envWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "workers must not be negative")
	}
	if c.Cache.MemoryEntries < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache.memory_entries must not be negative")
	}
	if c.Cache.RedisURL != "" {
		return pkgerrors.ValidateRedisURL(c.Cache.RedisURL)
	}
	return nil
}
