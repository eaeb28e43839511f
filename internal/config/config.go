// Package config loads the YAML configuration file. Defaults are applied
// before unmarshalling, so every field is optional; secrets are referenced
// by environment variable name and never stored in the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultLogFile          = ".otto-logs/ottoegg.log"
	DefaultSettingsPath     = ".ottoegg/settings.json"
	DefaultHTTPAddr         = ":8080"
	DefaultWeatherEndpoint  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodeEndpoint  = "https://nominatim.openstreetmap.org/reverse"
	DefaultUserAgent        = "ottoegg/1.0"
	DefaultLookupTimeout    = 10 * time.Second
	DefaultTick             = time.Second
	DefaultCooldown         = 15 * time.Second
	DefaultMaxEscalation    = 3
	DefaultAlmostDone       = 30 * time.Second
	DefaultBroadcast        = time.Second
	DefaultMQTTTopic        = "ottoegg/timer"
	DefaultMQTTClientID     = "ottoegg"
	DefaultHTTPReadTimeout  = 10 * time.Second
	DefaultHTTPWriteTimeout = 10 * time.Second
)

// Config is the top-level configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Settings  SettingsConfig  `yaml:"settings"`
	HTTP      HTTPConfig      `yaml:"http"`
	Weather   WeatherConfig   `yaml:"weather"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Timer     TimerConfig     `yaml:"timer"`
	MQTT      MQTTConfig      `yaml:"mqtt"`

	// Language is a BCP 47 tag or LANG-style locale. Empty means detect
	// from the environment.
	Language string `yaml:"language"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of: off | normal | verbose.
	Level string `yaml:"level"`
	// File is where log lines go; "stderr" writes to the console.
	File string `yaml:"file"`
}

// SettingsConfig selects where household settings are persisted.
type SettingsConfig struct {
	// Backend is one of: file | memory | postgres.
	Backend string `yaml:"backend"`
	// Path is the JSON file for the file backend.
	Path string `yaml:"path"`
	// DSNEnv names the environment variable holding the postgres DSN.
	DSNEnv string `yaml:"dsn_env"`
}

// DSN returns the postgres connection string resolved from the environment.
func (s SettingsConfig) DSN() string {
	if s.DSNEnv == "" {
		return ""
	}
	return os.Getenv(s.DSNEnv)
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// Broadcast is how often timer snapshots are pushed to websocket clients.
	Broadcast time.Duration `yaml:"broadcast_interval"`
}

// WeatherConfig points at the surface pressure service.
type WeatherConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// GeocodingConfig points at the reverse geocoding service.
type GeocodingConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// TimerConfig tunes the countdown loop.
type TimerConfig struct {
	Tick          time.Duration `yaml:"tick"`
	Cooldown      time.Duration `yaml:"cooldown"`
	MaxEscalation int           `yaml:"max_escalation"`
	AlmostDone    time.Duration `yaml:"almost_done"`
	Sound         bool          `yaml:"sound"`
	// SoundFile replaces the built-in chime with a 16-bit mono WAV.
	SoundFile     string        `yaml:"sound_file"`
}

// MQTTConfig enables publishing timer events. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Topic       string `yaml:"topic"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// Password returns the broker password resolved from the environment.
func (m MQTTConfig) Password() string {
	if m.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(m.PasswordEnv)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "normal",
			File:  DefaultLogFile,
		},
		Settings: SettingsConfig{
			Backend: "file",
			Path:    DefaultSettingsPath,
		},
		HTTP: HTTPConfig{
			Addr:         DefaultHTTPAddr,
			ReadTimeout:  DefaultHTTPReadTimeout,
			WriteTimeout: DefaultHTTPWriteTimeout,
			Broadcast:    DefaultBroadcast,
		},
		Weather: WeatherConfig{
			Endpoint: DefaultWeatherEndpoint,
			Timeout:  DefaultLookupTimeout,
		},
		Geocoding: GeocodingConfig{
			Endpoint:  DefaultGeocodeEndpoint,
			UserAgent: DefaultUserAgent,
			Timeout:   DefaultLookupTimeout,
		},
		Timer: TimerConfig{
			Tick:          DefaultTick,
			Cooldown:      DefaultCooldown,
			MaxEscalation: DefaultMaxEscalation,
			AlmostDone:    DefaultAlmostDone,
			Sound:         true,
		},
		MQTT: MQTTConfig{
			Topic:    DefaultMQTTTopic,
			ClientID: DefaultMQTTClientID,
		},
	}
}

// validate checks structural constraints.
func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "off", "quiet", "normal", "info", "verbose", "debug":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}

	switch cfg.Settings.Backend {
	case "file":
		if cfg.Settings.Path == "" {
			return fmt.Errorf("settings.path is required for the file backend")
		}
	case "memory":
	case "postgres":
		if cfg.Settings.DSNEnv == "" {
			return fmt.Errorf("settings.dsn_env is required for the postgres backend")
		}
	default:
		return fmt.Errorf("settings.backend: unknown backend %q", cfg.Settings.Backend)
	}

	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if cfg.HTTP.Broadcast <= 0 {
		return fmt.Errorf("http.broadcast_interval must be positive")
	}
	if cfg.Weather.Timeout <= 0 || cfg.Geocoding.Timeout <= 0 {
		return fmt.Errorf("lookup timeouts must be positive")
	}
	if cfg.Timer.Tick <= 0 {
		return fmt.Errorf("timer.tick must be positive")
	}
	if cfg.Timer.Cooldown <= 0 {
		return fmt.Errorf("timer.cooldown must be positive")
	}
	if cfg.Timer.MaxEscalation < 0 {
		return fmt.Errorf("timer.max_escalation must not be negative")
	}
	if cfg.MQTT.Enabled() && cfg.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when a broker is set")
	}
	return nil
}
