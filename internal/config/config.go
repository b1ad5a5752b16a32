// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty disables persistence-backed commands.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionTokenSecret is the HMAC secret for session tokens. Required for the server.
	SessionTokenSecret string `mapstructure:"SESSION_TOKEN_SECRET"`
	// SessionTokenIssuer is the iss claim (e.g. "wms-auth").
	SessionTokenIssuer string `mapstructure:"SESSION_TOKEN_ISSUER"`
	// SessionTokenAudience is the aud claim (e.g. "wms-api").
	SessionTokenAudience string `mapstructure:"SESSION_TOKEN_AUDIENCE"`
	// SessionTokenTTL is the session token lifetime (e.g. "15m").
	SessionTokenTTL string `mapstructure:"SESSION_TOKEN_TTL"`
	// SessionIdleTimeout is how long a session may sit idle before it is torn down (e.g. "300s").
	SessionIdleTimeout string `mapstructure:"SESSION_IDLE_TIMEOUT"`
	// SessionPollInterval is how often idle sessions are checked (e.g. "1s").
	SessionPollInterval string `mapstructure:"SESSION_POLL_INTERVAL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 14.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LockoutThreshold is the number of consecutive failures before an identity locks; default 5.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// LockoutWindow is how long a lock holds (e.g. "5m").
	LockoutWindow string `mapstructure:"LOCKOUT_WINDOW"`
	// OTPTTL is the OTP challenge lifetime (e.g. "300s").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// MailAPIKey is the API key for the mail relay. Required unless dev OTP mode is on.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailSender is the From address for OTP mail.
	MailSender string `mapstructure:"MAIL_SENDER"`
	// MailBaseURL is the mail relay API base URL.
	MailBaseURL string `mapstructure:"MAIL_BASE_URL"`
	// OTPReturnToClient when true enables dev OTP mode: no mail, OTP stored for GET /dev/otp. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production"). Used with OTPReturnToClient to refuse dev OTP in production.
	Env string `mapstructure:"APP_ENV"`
	// LoginRate is the sustained login attempts allowed per second per identity.
	LoginRate float64 `mapstructure:"LOGIN_RATE"`
	// LoginBurst is the login rate limiter burst size per identity.
	LoginBurst int `mapstructure:"LOGIN_BURST"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. "localhost:4317"); empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_TOKEN_SECRET", "")
	v.SetDefault("SESSION_TOKEN_ISSUER", "wms-auth")
	v.SetDefault("SESSION_TOKEN_AUDIENCE", "wms-api")
	v.SetDefault("SESSION_TOKEN_TTL", "15m")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "300s")
	v.SetDefault("SESSION_POLL_INTERVAL", "1s")
	v.SetDefault("BCRYPT_COST", 14)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("LOCKOUT_WINDOW", "5m")
	v.SetDefault("OTP_TTL", "300s")
	v.SetDefault("MAIL_API_KEY", "")
	v.SetDefault("MAIL_SENDER", "no-reply@keai-wms.local")
	v.SetDefault("MAIL_BASE_URL", "https://api.mailrelay.example/v1/send")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOGIN_RATE", 1.0)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 14
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutThreshold < 1 {
		return nil, errors.New("config: LOCKOUT_THRESHOLD must be at least 1")
	}

	return &cfg, nil
}

// TokenTTL parses SessionTokenTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTokenTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// IdleTimeout parses SessionIdleTimeout as a time.Duration. Returns 300s if unset or invalid.
func (c *Config) IdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.SessionIdleTimeout)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}

// PollInterval parses SessionPollInterval as a time.Duration. Returns 1s if unset or invalid.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.SessionPollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// LockWindow parses LockoutWindow as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) LockWindow() time.Duration {
	d, err := time.ParseDuration(c.LockoutWindow)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// ChallengeTTL parses OTPTTL as a time.Duration. Returns 300s if unset or invalid.
func (c *Config) ChallengeTTL() time.Duration {
	d, err := time.ParseDuration(c.OTPTTL)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}
