package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFirefly = "firefly"
	BackendSQLite  = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Backend  BackendConfig
	Firefly  FireflyConfig
	Database DatabaseConfig
	UI       UIConfig
	Log      LogConfig
}

type BackendConfig struct {
	Kind string
}

// FireflyConfig points at a Firefly III instance.
type FireflyConfig struct {
	URL      string
	Token    string
	TokenEnv string        `mapstructure:"token_env"`
	Timeout  time.Duration
}

// DatabaseConfig holds sqlite settings for the local ledger.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Timezone             string
	DefaultRange         int           `mapstructure:"default_range"`
	DefaultCurrency      string        `mapstructure:"default_currency"`
	AutocompleteDebounce time.Duration `mapstructure:"autocomplete_debounce"`
	DateFormat           string        `mapstructure:"date_format"`
}

type LogConfig struct {
	Path  string
	Level string
}

// Path returns the config file location, honouring FIREFLYMONEY_CONFIG.
func Path() string {
	if p := os.Getenv("FIREFLYMONEY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "fireflymoney", "config.toml")
}

// Load reads configuration from file and env. A .env file in the working
// directory is applied first; env var overrides use prefix FIREFLYMONEY_.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("backend.kind", BackendFirefly)
	v.SetDefault("firefly.url", "")
	v.SetDefault("firefly.token", "")
	v.SetDefault("firefly.token_env", "FIREFLY_TOKEN")
	v.SetDefault("firefly.timeout", 10*time.Second)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "fireflymoney", "ledger.db"))
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.default_range", 1)
	v.SetDefault("ui.default_currency", "")
	v.SetDefault("ui.autocomplete_debounce", 150*time.Millisecond)
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("log.path", filepath.Join(stateDir(), "fireflymoney", "fireflymoney.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	if p := os.Getenv("FIREFLYMONEY_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "fireflymoney"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FIREFLYMONEY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Backend.Kind = strings.ToLower(strings.TrimSpace(c.Backend.Kind))
	c.Firefly.URL = strings.TrimRight(strings.TrimSpace(c.Firefly.URL), "/")
	c.UI.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.UI.DefaultCurrency))
	return c, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend.Kind {
	case BackendFirefly:
		if c.Firefly.URL == "" {
			errs = append(errs, errors.New("firefly.url is required for the firefly backend"))
		} else if u, err := url.Parse(c.Firefly.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("firefly.url %q is not an absolute URL", c.Firefly.URL))
		}
		if c.Firefly.Timeout <= 0 {
			errs = append(errs, errors.New("firefly.timeout must be positive"))
		}
	case BackendSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.kind %q must be %q or %q", c.Backend.Kind, BackendFirefly, BackendSQLite))
	}
	switch c.UI.DefaultRange {
	case 1, 3, 6, 12:
	default:
		errs = append(errs, fmt.Errorf("ui.default_range %d must be one of 1, 3, 6, 12", c.UI.DefaultRange))
	}
	if c.UI.AutocompleteDebounce < 0 {
		errs = append(errs, errors.New("ui.autocomplete_debounce must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves ui.timezone.
func (c Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" || c.UI.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ui.timezone: %w", err)
	}
	return loc, nil
}

// Host is the key tokens are stored under in the secrets store.
func (c Config) Host() string {
	u, err := url.Parse(c.Firefly.URL)
	if err != nil || u.Host == "" {
		return c.Firefly.URL
	}
	return u.Host
}

// ResolveToken picks the access token: the env var named by token_env, then
// the secrets store, then the config file value.
func (c Config) ResolveToken(fetch func(host string) (string, error)) string {
	if c.Firefly.TokenEnv != "" {
		if tok := strings.TrimSpace(os.Getenv(c.Firefly.TokenEnv)); tok != "" {
			return tok
		}
	}
	if fetch != nil {
		if tok, err := fetch(c.Host()); err == nil && strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok)
		}
	}
	return strings.TrimSpace(c.Firefly.Token)
}

// Save writes the non-secret settings to disk, creating the config directory
// if needed. Tokens belong in the secrets store and are never written.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backend.kind", cfg.Backend.Kind)
	v.Set("firefly.url", cfg.Firefly.URL)
	v.Set("firefly.token_env", cfg.Firefly.TokenEnv)
	v.Set("firefly.timeout", cfg.Firefly.Timeout.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.default_range", cfg.UI.DefaultRange)
	v.Set("ui.default_currency", cfg.UI.DefaultCurrency)
	v.Set("ui.autocomplete_debounce", cfg.UI.AutocompleteDebounce.String())
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return d
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}
