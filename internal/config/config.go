package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/utils"
)

var drivers = []string{
	constants.DriverSQLite,
	constants.DriverJSON,
	constants.DriverPostgres,
	constants.DriverMemory,
}

// Config is read from config.yaml, then overridden by TRACKLIT_* variables.
type Config struct {
	UserID   string        `yaml:"user_id" env:"TRACKLIT_USER_ID" env-default:"local"`
	Timezone string        `yaml:"timezone" env:"TRACKLIT_TIMEZONE" env-default:"Local"`
	Storage  StorageConfig `yaml:"storage"`
	Notify   NotifyConfig  `yaml:"notify"`
	Log      LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"TRACKLIT_STORAGE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"TRACKLIT_STORAGE_PATH" env-default:"~/.config/tracklit/tracklit.db"`
	// DSN must not embed a password. Use the keyring for credentials.
	DSN            string `yaml:"dsn,omitempty" env:"TRACKLIT_STORAGE_DSN"`
	KeyringProfile string `yaml:"keyring_profile,omitempty" env:"TRACKLIT_KEYRING_PROFILE"`
}

type NotifyConfig struct {
	Window Duration `yaml:"window" env:"TRACKLIT_NOTIFY_WINDOW" env-default:"5m"`
}

// Duration reads and writes durations as "5m" style strings in both YAML and
// the environment.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("duration must look like 90s or 5m: %w", err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.SetValue(node.Value)
}

type LogConfig struct {
	Debug bool   `yaml:"debug" env:"TRACKLIT_DEBUG"`
	Dir   string `yaml:"dir" env:"TRACKLIT_LOG_DIR" env-default:"~/.config/tracklit/logs"`
}

// Default returns the configuration written by 'tracklit init'.
func Default() Config {
	return Config{
		UserID:   constants.DefaultUserID,
		Timezone: constants.DefaultTimezone,
		Storage: StorageConfig{
			Driver: constants.DefaultStorageDriver,
			Path:   constants.DefaultConfigPath,
		},
		Notify: NotifyConfig{Window: Duration(constants.DefaultNotifyWindow)},
		Log:    LogConfig{Dir: constants.DefaultConfigDir + "/logs"},
	}
}

// DefaultPath returns the expanded location of config.yaml.
func DefaultPath() (string, error) {
	dir, err := utils.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// Load reads path if it exists and applies environment overrides and
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return Config{}, fmt.Errorf("failed to access config %s: %w", path, err)
	}

	if err := cfg.expand(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) expand() error {
	var err error
	if c.Storage.Path, err = utils.ExpandPath(c.Storage.Path); err != nil {
		return err
	}
	if c.Log.Dir, err = utils.ExpandPath(c.Log.Dir); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.UserID == "" {
		return errors.New("user_id cannot be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver %q (expected one of %v)", c.Storage.Driver, drivers)
	}
	if c.Notify.Window <= 0 {
		return fmt.Errorf("notify window must be positive, got %s", c.Notify.Window)
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// Write saves cfg as YAML, creating the parent directory.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
