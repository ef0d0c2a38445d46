package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("backoffice version %s, commit %s, built at %s", version, commit, date)
}

// ErrInvalidPolicy is returned when api.refresh_failure_policy is not a known value
var ErrInvalidPolicy = errors.New("invalid refresh failure policy")

type Config struct {
	API       APIConfig         `mapstructure:"api"`
	Session   SessionConfig     `mapstructure:"session"`
	Normalize NormalizeConfig   `mapstructure:"normalize"`
	Logging   LoggingConfig     `mapstructure:"logging"`
	Resources map[string]string `mapstructure:"resources"`
}

// RefreshFailurePolicy decides what happens to a request whose token refresh failed
type RefreshFailurePolicy string

const (
	// PolicySilent dispatches the request without credentials
	PolicySilent RefreshFailurePolicy = "silent"
	// PolicyThrow fails the request with requester.ErrSessionExpired
	PolicyThrow RefreshFailurePolicy = "throw"
)

type APIConfig struct {
	BaseURL              string               `json:"base_url" mapstructure:"base_url"`
	RefreshPath          string               `json:"refresh_path" mapstructure:"refresh_path"`
	LoginPath            string               `json:"login_path" mapstructure:"login_path"`
	Timeout              time.Duration        `json:"timeout" mapstructure:"timeout"`
	ExpiryMargin         time.Duration        `json:"expiry_margin" mapstructure:"expiry_margin"`
	RefreshFailurePolicy RefreshFailurePolicy `json:"refresh_failure_policy" mapstructure:"refresh_failure_policy"`
	Headers              map[string]string    `json:"headers" mapstructure:"headers"`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
}

type NormalizeConfig struct {
	// Keys checked, in order, before the caller's named keys
	Keys []string `mapstructure:"keys"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// ResourcePath resolves a resource name to its list endpoint path
func (c *Config) ResourcePath(name string) string {
	if p, ok := c.Resources[name]; ok && p != "" {
		return p
	}
	return "/" + strings.Trim(name, "/") + "/"
}

// InitFlags registers the command line flags that override config keys
func InitFlags(flags *pflag.FlagSet) {
	flags.String("base-url", "", "Base URL of the back-office API")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("session-file", "", "Path to the session file")
	flags.String("refresh-failure-policy", "", "What to do when a token refresh fails (silent|throw)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.refresh_path", "/auth/token/refresh/")
	v.SetDefault("api.login_path", "/auth/token/")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.expiry_margin", "5s")
	v.SetDefault("api.refresh_failure_policy", string(PolicySilent))
	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("normalize.keys", []string{"results", "data"})
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.yaml"
	}
	return filepath.Join(dir, "backoffice", "session.yaml")
}

// Load reads configuration from config.yaml, .env, BACKOFFICE_* variables and the given flags.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BACKOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlag(v, flags, "api.base_url", "base-url")
		bindFlag(v, flags, "logging.level", "log-level")
		bindFlag(v, flags, "session.file", "session-file")
		bindFlag(v, flags, "api.refresh_failure_policy", "refresh-failure-policy")
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/backoffice")

	if path := os.Getenv("BACKOFFICE_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlag binds a flag to a key only when the flag exists, so defaults survive unset flags
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// Validate checks the values Load cannot default
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required, please adjust the config or pass --base-url or BACKOFFICE_API_BASE_URL environment variable")
	}
	switch c.API.RefreshFailurePolicy {
	case PolicySilent, PolicyThrow:
	case "":
		c.API.RefreshFailurePolicy = PolicySilent
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidPolicy, c.API.RefreshFailurePolicy, PolicySilent, PolicyThrow)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.ExpiryMargin < 0 {
		c.API.ExpiryMargin = 0
	}
	if len(c.Normalize.Keys) == 0 {
		c.Normalize.Keys = []string{"results", "data"}
	}
	return nil
}
