// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DeliverySimulate = "simulate"
	DeliverySMTP     = "smtp"
)

// SMTP is the mail relay used when contact delivery is "smtp".
type SMTP struct {
	Host     string        `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     string        `env:"PORT" envDefault:"587"`
	User     string        `env:"USER"`
	Password string        `env:"PASS"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Config is the full server configuration.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"./static"`
	ContentFile  string `env:"CONTENT_FILE"`
	MaxFormBytes int64  `env:"MAX_FORM_BYTES" envDefault:"65536"`

	DBPath         string        `env:"DB_PATH" envDefault:"portfolio.db"`
	StatsEnabled   bool          `env:"STATS_ENABLED" envDefault:"false"`
	VisitSalt      string        `env:"VISIT_SALT"`
	VisitRetention time.Duration `env:"VISIT_RETENTION" envDefault:"8760h"`

	ContactDelivery string `env:"CONTACT_DELIVERY" envDefault:"simulate"`
	SMTP            SMTP   `envPrefix:"SMTP_"`
	ToEmail         string `env:"TO_EMAIL"`

	LoadDelay     time.Duration `env:"LOAD_DELAY" envDefault:"2s"`
	SubmitDelay   time.Duration `env:"SUBMIT_DELAY" envDefault:"2s"`
	ResetDelay    time.Duration `env:"RESET_DELAY" envDefault:"5s"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	MaxSessions   int           `env:"MAX_SESSIONS" envDefault:"10000"`
}

// Load parses the process environment into a Config and validates it.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom is Load over an explicit set of variables.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.ContactDelivery {
	case DeliverySimulate, DeliverySMTP:
	default:
		return fmt.Errorf("config: CONTACT_DELIVERY must be %q or %q, got %q", DeliverySimulate, DeliverySMTP, c.ContactDelivery)
	}
	if c.ContactDelivery == DeliverySMTP && c.ToEmail == "" {
		return fmt.Errorf("config: TO_EMAIL is required for smtp delivery")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("config: MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	for name, d := range map[string]time.Duration{
		"LOAD_DELAY":     c.LoadDelay,
		"SUBMIT_DELAY":   c.SubmitDelay,
		"RESET_DELAY":    c.ResetDelay,
		"SESSION_TTL":    c.SessionTTL,
		"SWEEP_INTERVAL": c.SweepInterval,
		"SMTP_TIMEOUT":   c.SMTP.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
