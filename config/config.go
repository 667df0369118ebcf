// Package config resolves runtime configuration once, at startup, into an
// injectable Config. Nothing outside cmd reads the environment directly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"library-api/logger"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// StoreConfig is the {url, key} pair the store and identity boundaries are
// built from. AnonKey gates ordinary API calls, ServiceKey gates
// administrative ones such as user deletion.
type StoreConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
}

// Policies toggles invariants that the reservation workflow does not
// enforce by default. All false is parity mode.
type Policies struct {
	SingleUseExtension  bool
	EnforceAvailability bool
	ReminderOwnership   bool
}

type Config struct {
	Env                string
	Port               string
	GinMode            string
	JWTSecret          []byte
	SessionTTL         time.Duration
	Store              StoreConfig
	Log                logger.Config
	DefaultLocale      string
	ReminderWindowDays int
	UpcomingWindowDays int
	Policies           Policies
}

// NewViper returns a viper instance reading from the environment with every
// default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("JWT_SECRET", "library_super_secret_2024")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("STORE_URL", "sqlite://library.db")
	v.SetDefault("TEST_STORE_URL", "sqlite://:memory:")
	v.SetDefault("LOG_DEV", false)
	v.SetDefault("DEFAULT_LOCALE", "en")
	v.SetDefault("REMINDER_WINDOW_DAYS", 5)
	v.SetDefault("UPCOMING_WINDOW_DAYS", 12)
	v.SetDefault("POLICY_SINGLE_USE_EXTENSION", false)
	v.SetDefault("POLICY_ENFORCE_AVAILABILITY", false)
	v.SetDefault("POLICY_REMINDER_OWNERSHIP", false)
	return v
}

// FromEnv loads .env if present and resolves the configuration from the
// process environment.
func FromEnv() (*Config, error) {
	// best-effort: a missing .env is fine
	_ = godotenv.Load()
	return Load(NewViper())
}

// Load resolves a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if env == "" {
		env = EnvDevelopment
	}

	logLevel := v.GetString("LOG_LEVEL")
	logDev := v.GetBool("LOG_DEV")
	if logLevel == "" {
		if logDev {
			logLevel = "debug"
		} else {
			logLevel = "info"
		}
	}

	cfg := &Config{
		Env:                env,
		Port:               v.GetString("PORT"),
		GinMode:            v.GetString("GIN_MODE"),
		JWTSecret:          []byte(v.GetString("JWT_SECRET")),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		Store:              ResolveStore(v, env),
		Log:                logger.Config{Level: logLevel, Dev: logDev},
		DefaultLocale:      v.GetString("DEFAULT_LOCALE"),
		ReminderWindowDays: v.GetInt("REMINDER_WINDOW_DAYS"),
		UpcomingWindowDays: v.GetInt("UPCOMING_WINDOW_DAYS"),
		Policies: Policies{
			SingleUseExtension:  v.GetBool("POLICY_SINGLE_USE_EXTENSION"),
			EnforceAvailability: v.GetBool("POLICY_ENFORCE_AVAILABILITY"),
			ReminderOwnership:   v.GetBool("POLICY_REMINDER_OWNERSHIP"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveStore picks the store url and keys for env. The test environment
// reads the TEST_ prefixed variables.
func ResolveStore(v *viper.Viper, env string) StoreConfig {
	prefix := ""
	if env == EnvTest {
		prefix = "TEST_"
	}
	return StoreConfig{
		URL:        v.GetString(prefix + "STORE_URL"),
		AnonKey:    v.GetString(prefix + "STORE_ANON_KEY"),
		ServiceKey: v.GetString(prefix + "STORE_SERVICE_KEY"),
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Store.URL == "" {
		errs = append(errs, errors.New("store url is required"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.ReminderWindowDays <= 0 {
		errs = append(errs, fmt.Errorf("REMINDER_WINDOW_DAYS must be positive, got %d", c.ReminderWindowDays))
	}
	if c.UpcomingWindowDays <= 0 {
		errs = append(errs, fmt.Errorf("UPCOMING_WINDOW_DAYS must be positive, got %d", c.UpcomingWindowDays))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
