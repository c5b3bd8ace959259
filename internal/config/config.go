package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the dialer processes.
// All values come from env (or an env-file loaded by the entrypoint).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Bland    BlandConfig
	Gemini   GeminiConfig
	SMTP     SMTPConfig
	Reminder ReminderConfig
	Dialer   DialerConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// DBConfig describes the call-record store. Leaving Host empty is allowed;
// the service then falls back to the in-memory store (records are optional).
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig describes the status cache / bulk concurrency cap backend.
// Optional: leaving Host empty disables both.
type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

// BlandConfig describes the outbound call provider.
type BlandConfig struct {
	APIKey  string
	BaseURL string

	// DefaultVoice is used when a request carries no voice selector or an
	// unrecognized one.
	DefaultVoice string
}

// GeminiConfig describes the transcript extraction service.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	Recipient string
}

// ReminderConfig pins the delivery time-of-day for scheduled reminder
// emails. The parsed repayment date keeps only its calendar day; hour and
// minute come from here.
type ReminderConfig struct {
	Hour     int
	Minute   int
	Timezone string

	location *time.Location
}

// Location resolves the reminder timezone, defaulting to the host zone.
func (r ReminderConfig) Location() *time.Location {
	if r.location != nil {
		return r.location
	}
	if r.Timezone != "" {
		if loc, err := time.LoadLocation(r.Timezone); err == nil {
			return loc
		}
	}
	return time.Local
}

type DialerConfig struct {
	PollInterval time.Duration
	PollTimeout  time.Duration

	// BulkCallDelay is the fixed pause between consecutive bulk submissions,
	// required by the call provider's rate limits.
	BulkCallDelay time.Duration

	// MaxConcurrentCalls bounds in-flight calls when Redis is available.
	MaxConcurrentCalls int

	// ReminderWorkers bounds the one-shot reminder scheduler's pool.
	ReminderWorkers int
}

func Load() (Config, error) {
	c := Config{}

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.Port = intEnv("APP_PORT", 8000)

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = intEnv("DB_PORT", 5432)
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = intEnv("REDIS_PORT", 6379)

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.TokenTTL = durationEnv("JWT_TOKEN_TTL", 12*time.Hour)

	c.Bland.APIKey = os.Getenv("BLAND_API_KEY")
	c.Bland.BaseURL = stringEnv("BLAND_BASE_URL", "https://api.bland.ai")
	c.Bland.DefaultVoice = stringEnv("BLAND_DEFAULT_VOICE", "june")

	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	c.Gemini.BaseURL = stringEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	c.Gemini.Model = stringEnv("GEMINI_MODEL", "gemini-2.0-flash")

	c.SMTP.Host = strings.TrimSpace(os.Getenv("SMTP_SERVER"))
	c.SMTP.Port = intEnv("SMTP_PORT", 587)
	c.SMTP.User = strings.TrimSpace(os.Getenv("SMTP_USER"))
	c.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	c.SMTP.Recipient = strings.TrimSpace(os.Getenv("EMAIL_RECIPIENT"))

	c.Reminder.Hour = intEnv("REMINDER_HOUR", 9)
	c.Reminder.Minute = intEnv("REMINDER_MINUTE", 0)
	c.Reminder.Timezone = strings.TrimSpace(os.Getenv("REMINDER_TIMEZONE"))

	c.Dialer.PollInterval = durationEnv("CALL_POLL_INTERVAL", 5*time.Second)
	c.Dialer.PollTimeout = durationEnv("CALL_POLL_TIMEOUT", 180*time.Second)
	c.Dialer.BulkCallDelay = durationEnv("BULK_CALL_DELAY", 2*time.Second)
	c.Dialer.MaxConcurrentCalls = intEnv("MAX_CONCURRENT_CALLS", 10)
	c.Dialer.ReminderWorkers = intEnv("REMINDER_WORKERS", 10)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		c.App.Env = "local"
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host != "" {
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required when DB_HOST is set"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when DB_HOST is set"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.Bland.APIKey == "" {
		errs = append(errs, errors.New("BLAND_API_KEY is required"))
	}
	if c.Bland.BaseURL == "" {
		errs = append(errs, errors.New("BLAND_BASE_URL is required"))
	}
	if c.Bland.DefaultVoice == "" {
		errs = append(errs, errors.New("BLAND_DEFAULT_VOICE must not be empty"))
	}

	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}

	if c.SMTP.Host != "" {
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			errs = append(errs, fmt.Errorf("SMTP_PORT must be a valid port, got %d", c.SMTP.Port))
		}
		if c.SMTP.User == "" {
			errs = append(errs, errors.New("SMTP_USER is required when SMTP_SERVER is set"))
		}
		if c.SMTP.Recipient == "" {
			errs = append(errs, errors.New("EMAIL_RECIPIENT is required when SMTP_SERVER is set"))
		}
	}

	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 {
		errs = append(errs, fmt.Errorf("REMINDER_HOUR must be 0-23, got %d", c.Reminder.Hour))
	}
	if c.Reminder.Minute < 0 || c.Reminder.Minute > 59 {
		errs = append(errs, fmt.Errorf("REMINDER_MINUTE must be 0-59, got %d", c.Reminder.Minute))
	}
	if c.Reminder.Timezone != "" {
		loc, err := time.LoadLocation(c.Reminder.Timezone)
		if err != nil {
			errs = append(errs, fmt.Errorf("REMINDER_TIMEZONE %q is not a valid IANA zone", c.Reminder.Timezone))
		} else {
			c.Reminder.location = loc
		}
	}

	if c.Dialer.PollInterval <= 0 {
		errs = append(errs, errors.New("CALL_POLL_INTERVAL must be positive"))
	}
	if c.Dialer.PollTimeout <= 0 {
		errs = append(errs, errors.New("CALL_POLL_TIMEOUT must be positive"))
	}
	if c.Dialer.PollTimeout > 0 && c.Dialer.PollInterval > 0 && c.Dialer.PollTimeout < c.Dialer.PollInterval {
		errs = append(errs, errors.New("CALL_POLL_TIMEOUT must be at least CALL_POLL_INTERVAL"))
	}
	if c.Dialer.BulkCallDelay < 0 {
		errs = append(errs, errors.New("BULK_CALL_DELAY must not be negative"))
	}
	if c.Dialer.MaxConcurrentCalls <= 0 {
		c.Dialer.MaxConcurrentCalls = 10
	}
	if c.Dialer.ReminderWorkers <= 0 {
		c.Dialer.ReminderWorkers = 10
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// PostgresDSN builds the records-store DSN. Empty when no DB is configured.
// Avoid logging this string; it contains secrets.
func (c Config) PostgresDSN() string {
	if c.DB.Host == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
