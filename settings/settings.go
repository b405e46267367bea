// Package settings loads server settings from an optional YAML file,
// a .env file and BLOCKFALL_* environment variables.
//
// Precedence, highest first: environment, settings file, defaults.
// Nested keys map to environment variables by replacing dots with
// underscores, so nats.url is read from BLOCKFALL_NATS_URL.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "BLOCKFALL"

// Settings holds everything the server needs to start
type Settings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ConfigDir       string        `mapstructure:"config_dir"`
	LogLevel        string        `mapstructure:"log_level"`
	LogPretty       bool          `mapstructure:"log_pretty"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	AutoTick        bool          `mapstructure:"auto_tick"`

	NATS  NATSSettings  `mapstructure:"nats"`
	Ngrok NgrokSettings `mapstructure:"ngrok"`
}

// NATSSettings configures the optional event publisher. An empty URL
// disables it.
type NATSSettings struct {
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// NgrokSettings configures the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"authtoken"`
	Domain    string `mapstructure:"domain"`
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the loaded values
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("settings: port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ConfigDir == "" {
		return errors.New("settings: config_dir is required")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("settings: session_ttl must be positive, got %s", s.SessionTTL)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("settings: cleanup_interval must be positive, got %s", s.CleanupInterval)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("settings: invalid log_level %q: %w", s.LogLevel, err)
	}
	return nil
}

// Load reads settings. path may be empty, in which case only the
// environment and defaults are used.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("settings: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("settings: read %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("settings: decode: %w", err)
	}

	applyLegacyEnv(&s)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("config_dir", "configs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("cleanup_interval", time.Hour)
	v.SetDefault("auto_tick", false)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "blockfall")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)

	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.authtoken", "")
	v.SetDefault("ngrok.domain", "")
}

// applyLegacyEnv honors the unprefixed variables older deployments set
func applyLegacyEnv(s *Settings) {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" && s.ConfigDir == "configs" {
		s.ConfigDir = dir
	}
	if s.Ngrok.AuthToken == "" {
		s.Ngrok.AuthToken = os.Getenv("NGROK_AUTHTOKEN")
		if s.Ngrok.AuthToken == "" {
			s.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if s.Ngrok.Domain == "" {
		s.Ngrok.Domain = os.Getenv("NGROK_DOMAIN")
	}
	if !s.Ngrok.Enabled {
		if env := os.Getenv("NGROK_ENABLED"); env == "true" || env == "1" {
			s.Ngrok.Enabled = true
		}
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" && s.LogLevel == "info" {
		s.LogLevel = env
	}
}

// ConfigureLogging applies the log level and output format globally
func (s *Settings) ConfigureLogging() error {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if s.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}
