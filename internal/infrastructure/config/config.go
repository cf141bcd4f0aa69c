package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Database configuration
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	MigrationsPath string

	// JWT configuration
	JWTSecret          string
	JWTAccessDuration  time.Duration
	JWTRefreshDuration time.Duration

	// Rate limiting
	RateLimitRequestsPerMinute int
	LoginRateLimitPerMinute    int

	// Redis address of the optional admission stats sink; empty disables it
	RedisAddr string

	// Server configuration
	ServerPort int
	APIBase    string
	LogLevel   string
}

// fileConfig mirrors the YAML layout of CONFIG_FILE. Durations are strings so
// both Go durations and plain milliseconds are accepted.
type fileConfig struct {
	Database struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		User           string `yaml:"user"`
		Password       string `yaml:"password"`
		Name           string `yaml:"name"`
		SSLMode        string `yaml:"sslmode"`
		MigrationsPath string `yaml:"migrations_path"`
	} `yaml:"database"`
	JWT struct {
		Secret               string `yaml:"secret"`
		AccessTokenDuration  string `yaml:"access_token_duration"`
		RefreshTokenDuration string `yaml:"refresh_token_duration"`
	} `yaml:"jwt"`
	RateLimit struct {
		RequestsPerMinute      int `yaml:"requests_per_minute"`
		LoginRequestsPerMinute int `yaml:"login_requests_per_minute"`
	} `yaml:"rate_limit"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Server struct {
		Port     int    `yaml:"port"`
		APIBase  string `yaml:"api_base"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		// Database defaults
		DBHost:         "localhost",
		DBPort:         5432,
		DBUser:         "catalog",
		DBPassword:     "",
		DBName:         "catalog",
		DBSSLMode:      "disable",
		MigrationsPath: "migrations",

		// JWT defaults
		JWTAccessDuration:  domain.DefaultAccessTokenDuration,
		JWTRefreshDuration: domain.DefaultRefreshTokenDuration,

		RateLimitRequestsPerMinute: domain.DefaultRequestsPerMinute,
		LoginRateLimitPerMinute:    20,

		// Server defaults
		ServerPort: 8080,
		APIBase:    "/api/v1",
		LogLevel:   "info",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE, then .env and the process environment.
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	cfg := NewConfig()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.DBHost, fc.Database.Host)
	setInt(&c.DBPort, fc.Database.Port)
	setString(&c.DBUser, fc.Database.User)
	setString(&c.DBPassword, fc.Database.Password)
	setString(&c.DBName, fc.Database.Name)
	setString(&c.DBSSLMode, fc.Database.SSLMode)
	setString(&c.MigrationsPath, fc.Database.MigrationsPath)
	setString(&c.JWTSecret, fc.JWT.Secret)
	setInt(&c.RateLimitRequestsPerMinute, fc.RateLimit.RequestsPerMinute)
	setInt(&c.LoginRateLimitPerMinute, fc.RateLimit.LoginRequestsPerMinute)
	setString(&c.RedisAddr, fc.Redis.Addr)
	setInt(&c.ServerPort, fc.Server.Port)
	setString(&c.APIBase, fc.Server.APIBase)
	setString(&c.LogLevel, fc.Server.LogLevel)

	if fc.JWT.AccessTokenDuration != "" {
		if c.JWTAccessDuration, err = ParseDuration(fc.JWT.AccessTokenDuration); err != nil {
			return fmt.Errorf("jwt.access_token_duration: %w", err)
		}
	}
	if fc.JWT.RefreshTokenDuration != "" {
		if c.JWTRefreshDuration, err = ParseDuration(fc.JWT.RefreshTokenDuration); err != nil {
			return fmt.Errorf("jwt.refresh_token_duration: %w", err)
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	var err error

	c.DBHost = getEnv("DB_HOST", c.DBHost)
	if c.DBPort, err = getEnvInt("DB_PORT", c.DBPort); err != nil {
		return err
	}
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)
	c.MigrationsPath = getEnv("MIGRATIONS_PATH", c.MigrationsPath)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	if c.JWTAccessDuration, err = getEnvDuration("JWT_ACCESS_TOKEN_DURATION", c.JWTAccessDuration); err != nil {
		return err
	}
	if c.JWTRefreshDuration, err = getEnvDuration("JWT_REFRESH_TOKEN_DURATION", c.JWTRefreshDuration); err != nil {
		return err
	}

	if c.RateLimitRequestsPerMinute, err = getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", c.RateLimitRequestsPerMinute); err != nil {
		return err
	}
	if c.LoginRateLimitPerMinute, err = getEnvInt("LOGIN_RATE_LIMIT_PER_MINUTE", c.LoginRateLimitPerMinute); err != nil {
		return err
	}

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)

	if c.ServerPort, err = getEnvInt("PORT", c.ServerPort); err != nil {
		return err
	}
	c.APIBase = getEnv("API_BASE", c.APIBase)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks the values the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < domain.MinSigningKeyLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes: %w", domain.MinSigningKeyLength, domain.ErrInvalidKeyConfig))
	}
	if c.JWTAccessDuration <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_DURATION must be positive"))
	}
	if c.JWTRefreshDuration <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_DURATION must be positive"))
	}
	if c.RateLimitRequestsPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive"))
	}
	if c.LoginRateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.ServerPort))
	}
	if !strings.HasPrefix(c.APIBase, "/") {
		errs = append(errs, fmt.Errorf("API_BASE %q must start with /", c.APIBase))
	}
	return errors.Join(errs...)
}

// DatabaseURL returns the postgres URL used by pgx and golang-migrate
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// ParseDuration accepts a Go duration ("15m") or an integer number of milliseconds
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return intValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
