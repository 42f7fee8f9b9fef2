package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	FrontendURL          string
	CookieDomain         string
	CookieSecure         bool
	MongoDBURI           string
	MongoDBDatabase      string
	RedisURL             string

	SigninRateLimit   int
	SigninRateWindow  time.Duration
	LoginMaxAttempts  int
	LoginLockDuration time.Duration

	JobWatchInterval time.Duration
	ChartTimezone    string
	ChartLocation    *time.Location
}

func Load() (*Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                 v.GetString("PORT"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTAccessExpiration:  v.GetDuration("JWT_ACCESS_EXPIRATION"),
		JWTRefreshExpiration: v.GetDuration("JWT_REFRESH_EXPIRATION"),
		GoogleClientID:       v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:    v.GetString("GOOGLE_REDIRECT_URL"),
		FrontendURL:          v.GetString("FRONTEND_URL"),
		CookieDomain:         v.GetString("COOKIE_DOMAIN"),
		CookieSecure:         v.GetBool("COOKIE_SECURE"),
		MongoDBURI:           v.GetString("MONGODB_URI"),
		MongoDBDatabase:      v.GetString("MONGODB_DATABASE"),
		RedisURL:             v.GetString("REDIS_URL"),
		SigninRateLimit:      v.GetInt("SIGNIN_RATE_LIMIT"),
		SigninRateWindow:     v.GetDuration("SIGNIN_RATE_WINDOW"),
		LoginMaxAttempts:     v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockDuration:    v.GetDuration("LOGIN_LOCK_DURATION"),
		JobWatchInterval:     v.GetDuration("JOB_WATCH_INTERVAL"),
		ChartTimezone:        v.GetString("CHART_TIMEZONE"),
	}

	loc, err := time.LoadLocation(cfg.ChartTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: CHART_TIMEZONE: %w", err)
	}
	cfg.ChartLocation = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoDBURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTAccessExpiration <= 0 || c.JWTRefreshExpiration <= 0 {
		errs = append(errs, errors.New("JWT expirations must be positive durations"))
	}
	if c.SigninRateLimit <= 0 || c.SigninRateWindow <= 0 {
		errs = append(errs, errors.New("SIGNIN_RATE_LIMIT and SIGNIN_RATE_WINDOW must be positive"))
	}
	if c.LoginMaxAttempts <= 0 || c.LoginLockDuration <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS and LOGIN_LOCK_DURATION must be positive"))
	}
	if c.JobWatchInterval <= 0 {
		errs = append(errs, errors.New("JOB_WATCH_INTERVAL must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_ACCESS_EXPIRATION", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "168h")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("GOOGLE_REDIRECT_URL", "postmessage")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("MONGODB_DATABASE", "dashboard")
	v.SetDefault("SIGNIN_RATE_LIMIT", 5)
	v.SetDefault("SIGNIN_RATE_WINDOW", "15m")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCK_DURATION", "30m")
	v.SetDefault("JOB_WATCH_INTERVAL", "5s")
	v.SetDefault("CHART_TIMEZONE", "UTC")
}
