package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/media"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultAPIURL       = "http://localhost:5000"
	DefaultRateLimitTTL = 60 * time.Second
	DefaultDismissDelay = 800 * time.Millisecond
)

type Config struct {
	APIURL     string       `toml:"api_url"`
	StorageDir string       `toml:"storage_dir"`
	LogLevel   string       `toml:"log_level"`
	Search     SearchConfig `toml:"search"`
	Save       SaveConfig   `toml:"save"`
	HTTP       HTTPConfig   `toml:"http"`
}

type SearchConfig struct {
	PageSize       int      `toml:"page_size"`
	AutoRetry      *bool    `toml:"auto_retry,omitempty"`
	RateLimitCheck *bool    `toml:"rate_limit_check,omitempty"`
	RateLimitTTL   Duration `toml:"rate_limit_ttl"`
}

type SaveConfig struct {
	// DismissDelay is how long the success message stays visible.
	DismissDelay Duration `toml:"dismiss_delay"`
}

type HTTPConfig struct {
	// Timeout of 0 disables the client side timeout.
	Timeout     Duration `toml:"timeout"`
	Compression *bool    `toml:"compression,omitempty"`
	UserAgent   string   `toml:"user_agent"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// AutoRetryEnabled reports whether rate limited searches retry on their own.
func (s SearchConfig) AutoRetryEnabled() bool {
	return s.AutoRetry == nil || *s.AutoRetry
}

// RateLimitCheckEnabled reports whether /rate_limit is consulted before
// searching.
func (s SearchConfig) RateLimitCheckEnabled() bool {
	return s.RateLimitCheck == nil || *s.RateLimitCheck
}

// CompressionEnabled reports whether compressed responses are requested.
func (h HTTPConfig) CompressionEnabled() bool {
	return h.Compression == nil || *h.Compression
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	c := &Config{StorageDir: storageDir}
	c.applyDefaults()
	return c, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search.PageSize == 0 {
		c.Search.PageSize = media.DefaultPageSize
	}
	if c.Search.RateLimitTTL.Duration == 0 {
		c.Search.RateLimitTTL = Duration{DefaultRateLimitTTL}
	}
	if c.Save.DismissDelay.Duration == 0 {
		c.Save.DismissDelay = Duration{DefaultDismissDelay}
	}
}

// Validate checks the API URL and log level. An unsupported page size is
// reset to the default instead of failing.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http or https URL", c.APIURL)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if !media.ValidPageSize(c.Search.PageSize) {
		c.Search.PageSize = media.DefaultPageSize
	}
	if c.Search.RateLimitTTL.Duration < 0 {
		return fmt.Errorf("invalid rate_limit_ttl %s", c.Search.RateLimitTTL)
	}
	if c.HTTP.Timeout.Duration < 0 {
		return fmt.Errorf("invalid http timeout %s", c.HTTP.Timeout)
	}
	return nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/mediasearch", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default directory for local data.
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "mediasearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "mediasearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
