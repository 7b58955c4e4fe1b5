package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Config holds all application configuration
type Config struct {
	ServerAddr string
	APIPrefix  string
	// CatalogPath is the project data file; empty means the bundled catalog.
	CatalogPath string

	// CORSAllowedOrigins empty reflects any origin.
	CORSAllowedOrigins []string

	SMTP        SMTPConfig
	MailTimeout time.Duration

	ContactRatePerMinute float64
	ContactBurst         int

	ShutdownTimeout time.Duration
	Verbose         bool
}

// SMTPConfig holds the contact relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// MailEnabled reports whether SMTP credentials are configured
func (c *Config) MailEnabled() bool {
	return c.SMTP.Username != "" && c.SMTP.Password != ""
}

// Load reads configuration from the environment, then applies command-line
// flags from args on top.
func Load(args []string) (*Config, error) {
	cfg := &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		APIPrefix:   getEnv("API_PREFIX", "/api"),
		CatalogPath: getEnv("CATALOG_PATH", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 465),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
			To:       getEnv("CONTACT_TO", ""),
		},
		MailTimeout: getEnvDuration("MAIL_TIMEOUT", 10*time.Second),

		ContactRatePerMinute: getEnvFloat("CONTACT_RATE_PER_MIN", 5),
		ContactBurst:         getEnvInt("CONTACT_BURST", 5),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Verbose:         getEnvBool("VERBOSE", false),
	}

	flags := pflag.NewFlagSet("elevate-api", pflag.ContinueOnError)
	flags.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "listen address")
	flags.StringVar(&cfg.APIPrefix, "api-prefix", cfg.APIPrefix, "path prefix for API routes")
	flags.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "project data file (.json or .yaml); bundled catalog when empty")
	flags.StringSliceVar(&cfg.CORSAllowedOrigins, "cors-origin", cfg.CORSAllowedOrigins, "allowed CORS origin (repeatable); any origin when unset")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("api prefix %q must start with /", c.APIPrefix))
	}
	if c.ContactRatePerMinute <= 0 {
		errs = append(errs, errors.New("CONTACT_RATE_PER_MIN must be positive"))
	}
	if c.ContactBurst < 1 {
		errs = append(errs, errors.New("CONTACT_BURST must be at least 1"))
	}
	if c.MailEnabled() && c.SMTP.To == "" {
		errs = append(errs, errors.New("CONTACT_TO is required when SMTP credentials are set"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
