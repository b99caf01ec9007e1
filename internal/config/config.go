package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "cicidraci"

// Config is the full application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Player   PlayerConfig   `mapstructure:"player" yaml:"player"`
	Share    ShareConfig    `mapstructure:"share" yaml:"share"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Advanced AdvancedConfig `mapstructure:"advanced" yaml:"advanced"`
}

// APIConfig configures the content API client
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RateLimit  float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// CatalogConfig configures listing and pagination
type CatalogConfig struct {
	PageSize        int    `mapstructure:"page_size" yaml:"page_size"`
	DefaultCategory string `mapstructure:"default_category" yaml:"default_category"`
}

// SearchConfig configures the search assistant
type SearchConfig struct {
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
	RecentLimit  int           `mapstructure:"recent_limit" yaml:"recent_limit"`
	PopularLimit int           `mapstructure:"popular_limit" yaml:"popular_limit"`
}

// StoreConfig selects the view-state backend: sqlite, redis or memory
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// DatabaseConfig configures the sqlite database
type DatabaseConfig struct {
	Path           string `mapstructure:"path" yaml:"path"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	WALMode        bool   `mapstructure:"wal_mode" yaml:"wal_mode"`
}

// RedisConfig configures the redis view-state backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// PlayerConfig configures playback
type PlayerConfig struct {
	Quality        int      `mapstructure:"quality" yaml:"quality"` // preferred vertical resolution, 0 = first available
	LoadUserConfig bool     `mapstructure:"load_user_config" yaml:"load_user_config"`
	Fullscreen     bool     `mapstructure:"fullscreen" yaml:"fullscreen"`
	MPVArgs        []string `mapstructure:"mpv_args" yaml:"mpv_args"`
}

// ShareConfig configures share links
type ShareConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// ClipboardCommand reads the link on stdin when the system clipboard is unavailable
	ClipboardCommand string `mapstructure:"clipboard_command" yaml:"clipboard_command"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
	Color      bool   `mapstructure:"color" yaml:"color"`
}

// AdvancedConfig holds debugging switches
type AdvancedConfig struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://dramabox.sansekai.my.id/api/dramabox",
			Timeout:    10 * time.Second,
			MaxRetries: 0,
			RateLimit:  0,
			UserAgent:  appName + "/1.0",
		},
		Catalog: CatalogConfig{
			PageSize:        9,
			DefaultCategory: "foryou",
		},
		Search: SearchConfig{
			Debounce:     300 * time.Millisecond,
			RecentLimit:  5,
			PopularLimit: 5,
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Database: DatabaseConfig{
			Path:           filepath.Join(getDataDir(), appName, appName+".db"),
			MaxConnections: 4,
			WALMode:        true,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: appName + ":",
		},
		Player: PlayerConfig{
			Quality: 0,
		},
		Share: ShareConfig{
			BaseURL: "https://cicidraci.vercel.app",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   false,
			Color:      true,
		},
	}
}

// Load reads the configuration file (if any), environment and defaults.
// The returned viper instance is used by callers for hot reload.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, v, nil
}

// Validate checks values that would break the components at runtime
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be positive")
	}
	switch c.Store.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("store.backend must be one of sqlite, redis, memory (got %q)", c.Store.Backend)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Encode(Default())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// durationKeys are the paths of time.Duration fields, written as "10s" rather than nanoseconds
var durationKeys = [][]string{
	{"api", "timeout"},
	{"search", "debounce"},
}

// Encode renders c as YAML that Load reads back
func Encode(c *Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	for _, path := range durationKeys {
		node := lookupNode(&doc, path)
		if node == nil || node.Kind != yaml.ScalarNode {
			continue
		}
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			continue
		}
		node.Tag = "!!str"
		node.Value = time.Duration(n).String()
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func lookupNode(node *yaml.Node, path []string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, key := range path {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// InitializeDirs creates the config, data and state directories
func InitializeDirs() error {
	for _, dir := range []string{
		ConfigDir(),
		filepath.Join(getDataDir(), appName),
		filepath.Join(getStateDir(), appName),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigDir returns the directory holding config.yaml
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DefaultConfigFile returns the default config file path
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.user_agent", d.API.UserAgent)

	v.SetDefault("catalog.page_size", d.Catalog.PageSize)
	v.SetDefault("catalog.default_category", d.Catalog.DefaultCategory)

	v.SetDefault("search.debounce", d.Search.Debounce)
	v.SetDefault("search.recent_limit", d.Search.RecentLimit)
	v.SetDefault("search.popular_limit", d.Search.PopularLimit)

	v.SetDefault("store.backend", d.Store.Backend)

	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.wal_mode", d.Database.WALMode)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)

	v.SetDefault("player.quality", d.Player.Quality)
	v.SetDefault("player.load_user_config", d.Player.LoadUserConfig)
	v.SetDefault("player.fullscreen", d.Player.Fullscreen)
	v.SetDefault("player.mpv_args", d.Player.MPVArgs)

	v.SetDefault("share.base_url", d.Share.BaseURL)
	v.SetDefault("share.clipboard_command", d.Share.ClipboardCommand)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("logging.color", d.Logging.Color)

	v.SetDefault("advanced.debug", d.Advanced.Debug)
}

func getDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}
