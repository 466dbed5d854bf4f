package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Worker    WorkerConfig    `yaml:"worker"`
	Auth      AuthConfig      `yaml:"auth"`
	Mail      MailConfig      `yaml:"mail"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	Environment    string        `yaml:"environment"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type WorkerConfig struct {
	Concurrency  int           `yaml:"concurrency"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Queues       []string      `yaml:"queues"`
	MaxRetries   int           `yaml:"max_retries"`
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl"`
	VerifyTokenTTL     time.Duration `yaml:"verify_token_ttl"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl"`
	BCryptCost         int           `yaml:"bcrypt_cost"`
	CookieSecure       bool          `yaml:"cookie_secure"`
	FrontendURL        string        `yaml:"frontend_url"`
	RequireVerifiedLog bool          `yaml:"require_verified_login"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	RequestsPerMin  int           `yaml:"requests_per_minute"`
	BurstSize       int           `yaml:"burst_size"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `yaml:"dashboard_ttl"`
	L1MaxEntries int           `yaml:"l1_max_entries"`
}

type SchedulerConfig struct {
	TokenCleanupSpec string `yaml:"token_cleanup_spec"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           "8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			Environment:    "development",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "task_manager",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         "6379",
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Worker: WorkerConfig{
			Concurrency:  4,
			PollInterval: 5 * time.Second,
			Queues:       []string{"default", "retry_queue"},
			MaxRetries:   3,
		},
		Auth: AuthConfig{
			JWTSecret:       "your-secret-key",
			AccessTokenTTL:  3 * 24 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			VerifyTokenTTL:  24 * time.Hour,
			ResetTokenTTL:   time.Hour,
			BCryptCost:      10,
			FrontendURL:     "http://localhost:3000",
		},
		Mail: MailConfig{
			Port: 587,
			From: "no-reply@taskmanager.local",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			RequestsPerMin:  100,
			BurstSize:       10,
			CleanupInterval: 10 * time.Minute,
		},
		Cache: CacheConfig{
			DashboardTTL: time.Minute,
			L1MaxEntries: 1000,
		},
		Scheduler: SchedulerConfig{
			TokenCleanupSpec: "@every 1h",
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_PATH when set, then environment variables.
func LoadConfig() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	config.applyEnv()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	s := &c.Server
	s.Host = getEnv("HOST", s.Host)
	s.Port = getEnv("PORT", s.Port)
	s.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", s.IdleTimeout)
	s.Environment = getEnv("ENVIRONMENT", s.Environment)
	s.AllowedOrigins = getEnvAsList("ALLOWED_ORIGINS", s.AllowedOrigins)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	d := &c.Database
	d.Driver = getEnv("DB_DRIVER", d.Driver)
	d.DSN = getEnv("DB_DSN", d.DSN)
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnv("DB_PORT", d.Port)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)
	d.Name = getEnv("DB_NAME", d.Name)
	d.SSLMode = getEnv("DB_SSL_MODE", d.SSLMode)
	d.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", d.MaxIdleConns)
	d.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime)
	d.ConnMaxIdleTime = getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime)
	d.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", d.AutoMigrate)

	r := &c.Redis
	r.Enabled = getEnvAsBool("REDIS_ENABLED", r.Enabled)
	r.Host = getEnv("REDIS_HOST", r.Host)
	r.Port = getEnv("REDIS_PORT", r.Port)
	r.Password = getEnv("REDIS_PASSWORD", r.Password)
	r.DB = getEnvAsInt("REDIS_DB", r.DB)
	r.PoolSize = getEnvAsInt("REDIS_POOL_SIZE", r.PoolSize)
	r.MinIdleConns = getEnvAsInt("REDIS_MIN_IDLE_CONNS", r.MinIdleConns)
	r.MaxRetries = getEnvAsInt("REDIS_MAX_RETRIES", r.MaxRetries)
	r.DialTimeout = getEnvAsDuration("REDIS_DIAL_TIMEOUT", r.DialTimeout)
	r.ReadTimeout = getEnvAsDuration("REDIS_READ_TIMEOUT", r.ReadTimeout)
	r.WriteTimeout = getEnvAsDuration("REDIS_WRITE_TIMEOUT", r.WriteTimeout)

	w := &c.Worker
	w.Concurrency = getEnvAsInt("WORKER_CONCURRENCY", w.Concurrency)
	w.PollInterval = getEnvAsDuration("WORKER_POLL_INTERVAL", w.PollInterval)
	w.Queues = getEnvAsList("WORKER_QUEUES", w.Queues)
	w.MaxRetries = getEnvAsInt("WORKER_MAX_RETRIES", w.MaxRetries)

	a := &c.Auth
	a.JWTSecret = getEnv("JWT_SECRET", a.JWTSecret)
	a.AccessTokenTTL = getEnvAsDuration("ACCESS_TOKEN_TTL", a.AccessTokenTTL)
	a.RefreshTokenTTL = getEnvAsDuration("REFRESH_TOKEN_TTL", a.RefreshTokenTTL)
	a.VerifyTokenTTL = getEnvAsDuration("VERIFY_TOKEN_TTL", a.VerifyTokenTTL)
	a.ResetTokenTTL = getEnvAsDuration("RESET_TOKEN_TTL", a.ResetTokenTTL)
	a.BCryptCost = getEnvAsInt("BCRYPT_COST", a.BCryptCost)
	a.CookieSecure = getEnvAsBool("COOKIE_SECURE", a.CookieSecure || c.IsProduction())
	a.FrontendURL = getEnv("FRONTEND_URL", a.FrontendURL)
	a.RequireVerifiedLog = getEnvAsBool("REQUIRE_VERIFIED_LOGIN", a.RequireVerifiedLog)

	m := &c.Mail
	m.Host = getEnv("SMTP_HOST", m.Host)
	m.Port = getEnvAsInt("SMTP_PORT", m.Port)
	m.Username = getEnv("SMTP_USERNAME", m.Username)
	m.Password = getEnv("SMTP_PASSWORD", m.Password)
	m.From = getEnv("SMTP_FROM", m.From)

	rl := &c.RateLimit
	rl.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.RequestsPerMin = getEnvAsInt("RATE_LIMIT_RPM", rl.RequestsPerMin)
	rl.BurstSize = getEnvAsInt("RATE_LIMIT_BURST", rl.BurstSize)
	rl.CleanupInterval = getEnvAsDuration("RATE_LIMIT_CLEANUP", rl.CleanupInterval)

	c.Cache.DashboardTTL = getEnvAsDuration("CACHE_DASHBOARD_TTL", c.Cache.DashboardTTL)
	c.Cache.L1MaxEntries = getEnvAsInt("CACHE_L1_MAX_ENTRIES", c.Cache.L1MaxEntries)

	c.Scheduler.TokenCleanupSpec = getEnv("TOKEN_CLEANUP_SPEC", c.Scheduler.TokenCleanupSpec)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auth.BCryptCost < 4 || c.Auth.BCryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BCryptCost)
	}

	if !c.IsProduction() {
		return nil
	}

	if c.Database.Driver != "sqlite" && c.Database.DSN == "" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Auth.JWTSecret == "your-secret-key" || len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be set to at least 32 characters in production")
	}

	return nil
}

// GetDatabaseDSN returns the explicit DSN when set, otherwise one assembled
// for the configured driver.
func (c *Config) GetDatabaseDSN() string {
	d := c.Database
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return d.Name + ".db?_foreign_keys=1"
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
