package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process-wide settings read from the environment.
type Config struct {
	HTTPAddr           string
	CORSAllowedOrigins string
	ShutdownTimeout    time.Duration

	Database  Database
	JWT       JWT
	Redis     Redis
	RateLimit RateLimit

	BcryptCost int
}

// Database selects and configures the gorm dialector.
type Database struct {
	Driver   string // sqlite | postgres
	Path     string
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSL      bool
	Debug    bool
}

// JWT configures token signing and lifetimes.
type JWT struct {
	SecretKey         string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	RefreshGrace      time.Duration
}

// Redis configures the optional catalog cache. An empty Addr disables it.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimit bounds requests per client IP on the GraphQL endpoint. It needs
// redis; zero Requests disables it.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":3000"),
		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),
		ShutdownTimeout:    getduration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Database: Database{
			Driver:   strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:     getenv("DB_PATH", "storefront.db"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getenv("DB_HOST", "postgres"),
			Port:     getint("DB_PORT", 5432),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			SSL:      getbool("DB_SSL", false),
			Debug:    getbool("DB_DEBUG", false),
		},
		JWT: JWT{
			SecretKey:         getenv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Issuer:            getenv("JWT_ISSUER", "storefront"),
			Expiration:        getduration("JWT_EXPIRATION", 5*time.Minute),
			RefreshExpiration: getduration("JWT_REFRESH_EXPIRATION", 7*24*time.Hour),
			RefreshGrace:      getduration("JWT_REFRESH_GRACE", time.Minute),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getint("REDIS_DB", 0),
			TTL:      getduration("CACHE_TTL", time.Minute),
		},
		RateLimit: RateLimit{
			Requests: getint("RATE_LIMIT_REQUESTS", 100),
			Window:   getduration("RATE_LIMIT_WINDOW", time.Minute),
		},
		BcryptCost: getint("BCRYPT_COST", 12),
	}
}

// DSN returns the connection string for the configured driver.
func (d Database) DSN() string {
	if d.Driver != "postgres" {
		return d.Path
	}
	if d.URL != "" {
		return d.URL
	}
	sslmode := "disable"
	if d.SSL {
		sslmode = "require"
	}
	return fmt.Sprintf(
		"host=%s user=%s password='%s' dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, sslmode,
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getbool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getduration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
