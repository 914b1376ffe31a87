package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/growtree/internal/server"
	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Settings is the CLI configuration file.
type Settings struct {
	Layout config.Layout `mapstructure:"layout" toml:"layout"`
	// Parallel is the number of categories laid out concurrently.
	Parallel int `mapstructure:"parallel" toml:"parallel"`
	// Passes is the number of barycenter sweeps.
	Passes int `mapstructure:"passes" toml:"passes"`
	// Behaviors lists TOML files that extend the behavior catalog.
	Behaviors []string       `mapstructure:"behaviors" toml:"behaviors"`
	Cache     CacheSettings  `mapstructure:"cache" toml:"cache"`
	Server    ServerSettings `mapstructure:"server" toml:"server"`
}

// CacheSettings selects and configures the layout cache.
type CacheSettings struct {
	Backend string `mapstructure:"backend" toml:"backend"`
	// Dir overrides the file cache directory.
	Dir      string `mapstructure:"dir" toml:"dir"`
	RedisURL string `mapstructure:"redis_url" toml:"redis_url"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}

// ServerSettings configures "growtree serve".
type ServerSettings struct {
	Addr           string `mapstructure:"addr" toml:"addr"`
	RequestTimeout string `mapstructure:"request_timeout" toml:"request_timeout"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes" toml:"max_body_bytes"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Layout:    config.Default(),
		Parallel:  4,
		Passes:    pipeline.DefaultPasses,
		Behaviors: []string{},
		Cache: CacheSettings{
			Backend:  BackendFile,
			RedisURL: "redis://localhost:6379/0",
			Prefix:   cache.DefaultRedisPrefix,
		},
		Server: ServerSettings{
			Addr:           "localhost:8080",
			RequestTimeout: server.DefaultRequestTimeout.String(),
			MaxBodyBytes:   server.DefaultMaxBodyBytes,
		},
	}
}

// setDefaults registers every key so environment variables can override
// keys the config file leaves out.
func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("layout.node_size", d.Layout.NodeSize)
	v.SetDefault("layout.base_radius", d.Layout.BaseRadius)
	v.SetDefault("layout.tier_spacing", d.Layout.TierSpacing)
	v.SetDefault("layout.arc_spacing", d.Layout.ArcSpacing)
	v.SetDefault("layout.min_node_spacing", d.Layout.MinNodeSpacing)
	v.SetDefault("layout.max_tiers", d.Layout.MaxTiers)
	v.SetDefault("layout.category_padding", d.Layout.CategoryPadding)
	v.SetDefault("layout.sitter_distance", d.Layout.SitterDistance)
	v.SetDefault("layout.nudge_distance", d.Layout.NudgeDistance)

	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("passes", d.Passes)
	v.SetDefault("behaviors", d.Behaviors)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.prefix", d.Cache.Prefix)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
}

// LoadSettings reads settings from path, or from the XDG config file when
// path is empty, and applies GROWTREE_* environment overrides. A missing
// XDG file is not an error; a missing explicit path is. It returns the file
// actually read, if any.
func LoadSettings(path string) (Settings, string, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", fmt.Errorf("decode config: %w", err)
	}
	if err := s.Layout.WithDefaults().Validate(); err != nil {
		return Settings{}, "", fmt.Errorf("config %s: %w", v.ConfigFileUsed(), err)
	}
	return s, v.ConfigFileUsed(), nil
}

// WriteSettings writes s to path as TOML, creating parent directories.
func WriteSettings(s Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/growtree/).
func configDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// configFilePath is the default config file location.
func configFilePath() string { return filepath.Join(configDir(), "config.toml") }

// defaultCacheDir returns the cache directory using XDG standard (~/.cache/growtree/).
func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// cacheDir is the configured file cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.settings.Cache.Dir != "" {
		return c.settings.Cache.Dir, nil
	}
	return defaultCacheDir()
}

// displayPath abbreviates the home directory to ~.
func displayPath(p string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if rel, ok := strings.CutPrefix(p, home); ok {
		return "~" + rel
	}
	return p
}
